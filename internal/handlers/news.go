// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finwire/internal/models"
	"finwire/internal/store"
)

// NewsList returns a page of external-news snapshots. Supported query
// parameters: search, source, category, active, page, limit. Requests
// without an admin session only see active snapshots.
func (c *CMS) NewsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pagination(r)

	filter := store.NewsFilter{
		Search:   q.Get("search"),
		Source:   q.Get("source"),
		Category: q.Get("category"),
		IsActive: boolParam(r, "active"),
		Page:     page,
		Limit:    limit,
	}

	if !isAdminRequest(r) {
		active := true
		filter.IsActive = &active
	}

	items, total, err := c.news.List(filter)
	if err != nil {
		serverError(w, "list news", err)
		return
	}
	if items == nil {
		items = []models.ExternalNews{}
	}
	writePage(w, items, total, page, limit)
}

// NewsGet returns one snapshot by ID. Public reads of an active snapshot
// bump the view counter.
func (c *CMS) NewsGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	item, err := c.news.FindByID(id)
	if err != nil {
		serverError(w, "find news", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "news item not found")
		return
	}

	admin := isAdminRequest(r)
	if !item.IsActive && !admin {
		writeError(w, http.StatusNotFound, "news item not found")
		return
	}

	if item.IsActive && !admin {
		if err := c.news.IncrementViews(item.ID); err != nil {
			serverError(w, "increment news views", err)
			return
		}
		item.Views++
	}
	writeJSON(w, http.StatusOK, item)
}

// newsActiveRequest is the body for toggling snapshot visibility.
type newsActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// NewsSetActive toggles a snapshot's visibility on public listings.
// Snapshots are append-only; this flag is the only mutable field.
func (c *CMS) NewsSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	item, err := c.news.FindByID(id)
	if err != nil {
		serverError(w, "find news", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "news item not found")
		return
	}

	var req newsActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.news.SetActive(id, req.IsActive); err != nil {
		serverError(w, "set news active", err)
		return
	}
	item.IsActive = req.IsActive
	writeJSON(w, http.StatusOK, item)
}

// NewsDelete removes a snapshot.
func (c *CMS) NewsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid news id")
		return
	}

	item, err := c.news.FindByID(id)
	if err != nil {
		serverError(w, "find news", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "news item not found")
		return
	}

	if err := c.news.Delete(id); err != nil {
		serverError(w, "delete news", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
