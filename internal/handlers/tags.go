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
	"finwire/internal/slug"
)

// TagsList returns all tags with post counts.
func (c *CMS) TagsList(w http.ResponseWriter, r *http.Request) {
	items, err := c.tags.List()
	if err != nil {
		serverError(w, "list tags", err)
		return
	}
	if items == nil {
		items = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, items)
}

// TagGet returns one tag by ID.
func (c *CMS) TagGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	tag, err := c.tags.FindByID(id)
	if err != nil {
		serverError(w, "find tag", err)
		return
	}
	if tag == nil {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// tagRequest is the create/update body for tags.
type tagRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// validate normalizes the request and reports the first problem found.
func (req *tagRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
	} else {
		req.Slug = slug.Generate(req.Slug)
	}
	if req.Slug == "" {
		return "name does not produce a valid slug"
	}
	if req.Color != "" && !validHexColor(req.Color) {
		return "color must be a #RRGGBB hex value"
	}
	return ""
}

// TagCreate adds a new tag. A missing color falls back to the default.
func (c *CMS) TagCreate(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.tags.NameOrSlugExists(req.Name, req.Slug, nil)
	if err != nil {
		serverError(w, "check tag exists", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a tag with this name or slug already exists")
		return
	}

	tag, err := c.tags.Create(&models.Tag{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		serverError(w, "create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// TagUpdate modifies an existing tag.
func (c *CMS) TagUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	tag, err := c.tags.FindByID(id)
	if err != nil {
		serverError(w, "find tag", err)
		return
	}
	if tag == nil {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.tags.NameOrSlugExists(req.Name, req.Slug, &id)
	if err != nil {
		serverError(w, "check tag exists", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a tag with this name or slug already exists")
		return
	}

	tag.Name = req.Name
	tag.Slug = req.Slug
	tag.Description = req.Description
	if req.Color != "" {
		tag.Color = req.Color
	}

	if err := c.tags.Update(tag); err != nil {
		serverError(w, "update tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// TagDelete removes a tag. Post associations cascade away.
func (c *CMS) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	tag, err := c.tags.FindByID(id)
	if err != nil {
		serverError(w, "find tag", err)
		return
	}
	if tag == nil {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}

	if err := c.tags.Delete(id); err != nil {
		serverError(w, "delete tag", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
