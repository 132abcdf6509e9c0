// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finwire/internal/models"
)

// NavItemsList returns nav items in display order. Requests without an
// admin session only see active entries.
func (c *CMS) NavItemsList(w http.ResponseWriter, r *http.Request) {
	items, err := c.navItems.List(!isAdminRequest(r))
	if err != nil {
		serverError(w, "list nav items", err)
		return
	}
	if items == nil {
		items = []models.NavItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// navItemRequest is the create/update body for nav items.
type navItemRequest struct {
	Name     string `json:"name"`
	Href     string `json:"href"`
	Order    int    `json:"order"`
	IsActive bool   `json:"is_active"`
}

// validate reports the first problem found.
func (req *navItemRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Href = strings.TrimSpace(req.Href)
	if req.Name == "" {
		return "name is required"
	}
	if req.Href == "" {
		return "href is required"
	}
	return ""
}

// NavItemCreate adds a navigation entry.
func (c *CMS) NavItemCreate(w http.ResponseWriter, r *http.Request) {
	var req navItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := c.navItems.Create(&models.NavItem{
		Name:     req.Name,
		Href:     req.Href,
		Order:    req.Order,
		IsActive: req.IsActive,
	})
	if err != nil {
		serverError(w, "create nav item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// NavItemUpdate modifies a navigation entry.
func (c *CMS) NavItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid nav item id")
		return
	}

	item, err := c.navItems.FindByID(id)
	if err != nil {
		serverError(w, "find nav item", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "nav item not found")
		return
	}

	var req navItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item.Name = req.Name
	item.Href = req.Href
	item.Order = req.Order
	item.IsActive = req.IsActive

	if err := c.navItems.Update(item); err != nil {
		serverError(w, "update nav item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// NavItemDelete removes a navigation entry.
func (c *CMS) NavItemDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid nav item id")
		return
	}

	item, err := c.navItems.FindByID(id)
	if err != nil {
		serverError(w, "find nav item", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "nav item not found")
		return
	}

	if err := c.navItems.Delete(id); err != nil {
		serverError(w, "delete nav item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
