// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"finwire/internal/markets"
	"finwire/internal/models"
	"finwire/internal/slug"
)

// MarketListsList returns all market lists. Requests without an admin
// session only see public lists.
func (c *CMS) MarketListsList(w http.ResponseWriter, r *http.Request) {
	var visibility models.Visibility
	if !isAdminRequest(r) {
		visibility = models.VisibilityPublic
	}

	items, err := c.marketLists.List(visibility)
	if err != nil {
		serverError(w, "list market lists", err)
		return
	}
	if items == nil {
		items = []models.MarketList{}
	}
	writeJSON(w, http.StatusOK, items)
}

// MarketListGet returns one market list by slug.
func (c *CMS) MarketListGet(w http.ResponseWriter, r *http.Request) {
	list, err := c.marketLists.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, "find market list", err)
		return
	}
	if list == nil || (list.Visibility == models.VisibilityPrivate && !isAdminRequest(r)) {
		writeError(w, http.StatusNotFound, "market list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarketListItems resolves a market list into its instrument identifiers,
// serving the cached payload when fresh enough. Private lists 404 for
// non-admin requests, same as MarketListGet. The response is the raw
// resolved document, not the standard envelope.
func (c *CMS) MarketListItems(w http.ResponseWriter, r *http.Request) {
	list, err := c.marketLists.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, "find market list", err)
		return
	}
	if list == nil || (list.Visibility == models.VisibilityPrivate && !isAdminRequest(r)) {
		writeError(w, http.StatusNotFound, "market list not found")
		return
	}

	payload, err := c.resolver.Resolve(r.Context(), list.Slug)
	if errors.Is(err, markets.ErrNotFound) {
		writeError(w, http.StatusNotFound, "market list not found")
		return
	}
	if err != nil {
		serverError(w, "resolve market list", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// marketListRequest is the create/update body for market lists.
type marketListRequest struct {
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Filters        json.RawMessage `json:"filters"`
	StaticItems    []string        `json:"static_items"`
	ComputedType   string          `json:"computed_type"`
	RefreshSeconds int             `json:"refresh_seconds"`
	Visibility     string          `json:"visibility"`
	Meta           json.RawMessage `json:"meta"`
}

// validate normalizes the request and reports the first problem found.
// Filters and meta are checked for being well-formed JSON objects only.
func (req *marketListRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	} else {
		req.Slug = slug.Generate(req.Slug)
	}
	if req.Slug == "" {
		return "title does not produce a valid slug"
	}
	if req.ComputedType == "" {
		req.ComputedType = string(models.ComputedStatic)
	}
	if !models.ComputedType(req.ComputedType).Valid() {
		return "computed_type must be static or dynamic"
	}
	if req.Visibility == "" {
		req.Visibility = string(models.VisibilityPublic)
	}
	if !models.Visibility(req.Visibility).Valid() {
		return "visibility must be public or private"
	}
	if req.RefreshSeconds < 0 {
		return "refresh_seconds must not be negative"
	}
	if len(req.Filters) > 0 && !json.Valid(req.Filters) {
		return "filters must be valid JSON"
	}
	if len(req.Meta) > 0 && !json.Valid(req.Meta) {
		return "meta must be valid JSON"
	}
	for _, item := range req.StaticItems {
		if !validInstrumentID(item) {
			return "static item is not a valid instrument id: " + item
		}
	}
	return ""
}

// MarketListCreate adds a market list.
func (c *CMS) MarketListCreate(w http.ResponseWriter, r *http.Request) {
	var req marketListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.marketLists.SlugExists(req.Slug, nil)
	if err != nil {
		serverError(w, "check market list slug", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a market list with this slug already exists")
		return
	}

	list, err := c.marketLists.Create(&models.MarketList{
		Slug:           req.Slug,
		Title:          req.Title,
		Description:    req.Description,
		Filters:        req.Filters,
		StaticItems:    req.StaticItems,
		ComputedType:   models.ComputedType(req.ComputedType),
		RefreshSeconds: req.RefreshSeconds,
		Visibility:     models.Visibility(req.Visibility),
		Meta:           req.Meta,
	})
	if err != nil {
		serverError(w, "create market list", err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// MarketListUpdate modifies a market list, addressed by its current slug.
// The cached resolved payload is not invalidated; it ages out within
// refresh_seconds.
func (c *CMS) MarketListUpdate(w http.ResponseWriter, r *http.Request) {
	list, err := c.marketLists.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, "find market list", err)
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "market list not found")
		return
	}
	id := list.ID

	var req marketListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.marketLists.SlugExists(req.Slug, &id)
	if err != nil {
		serverError(w, "check market list slug", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a market list with this slug already exists")
		return
	}

	list.Slug = req.Slug
	list.Title = req.Title
	list.Description = req.Description
	list.Filters = req.Filters
	list.StaticItems = req.StaticItems
	list.ComputedType = models.ComputedType(req.ComputedType)
	list.RefreshSeconds = req.RefreshSeconds
	list.Visibility = models.Visibility(req.Visibility)
	list.Meta = req.Meta

	if err := c.marketLists.Update(list); err != nil {
		serverError(w, "update market list", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarketListDelete removes a market list, addressed by slug.
func (c *CMS) MarketListDelete(w http.ResponseWriter, r *http.Request) {
	list, err := c.marketLists.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, "find market list", err)
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "market list not found")
		return
	}

	if err := c.marketLists.Delete(list.ID); err != nil {
		serverError(w, "delete market list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
