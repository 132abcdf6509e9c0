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

// CategoriesList returns all categories with post counts, or the nested
// tree when ?tree=true is set.
func (c *CMS) CategoriesList(w http.ResponseWriter, r *http.Request) {
	if t := boolParam(r, "tree"); t != nil && *t {
		tree, err := c.categories.Tree()
		if err != nil {
			serverError(w, "category tree", err)
			return
		}
		if tree == nil {
			tree = []models.Category{}
		}
		writeJSON(w, http.StatusOK, tree)
		return
	}

	items, err := c.categories.List()
	if err != nil {
		serverError(w, "list categories", err)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CategoryGet returns one category by ID.
func (c *CMS) CategoryGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	cat, err := c.categories.FindByID(id)
	if err != nil {
		serverError(w, "find category", err)
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// categoryRequest is the create/update body for categories.
type categoryRequest struct {
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	ParentID     *uuid.UUID `json:"parent_id"`
	ShowInHeader bool       `json:"show_in_header"`
	IsMainHeader bool       `json:"is_main_header"`
}

// validate normalizes the request and reports the first problem found.
// An empty slug is derived from the name.
func (req *categoryRequest) validate() string {
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
	return ""
}

// CategoryCreate adds a new category.
func (c *CMS) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.ParentID != nil {
		parent, err := c.categories.FindByID(*req.ParentID)
		if err != nil {
			serverError(w, "find parent category", err)
			return
		}
		if parent == nil {
			writeError(w, http.StatusBadRequest, "parent category does not exist")
			return
		}
	}

	exists, err := c.categories.NameOrSlugExists(req.Name, req.Slug, nil)
	if err != nil {
		serverError(w, "check category exists", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a category with this name or slug already exists")
		return
	}

	cat, err := c.categories.Create(&models.Category{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ParentID:     req.ParentID,
		ShowInHeader: req.ShowInHeader,
		IsMainHeader: req.IsMainHeader,
	})
	if err != nil {
		serverError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

// CategoryUpdate modifies an existing category.
func (c *CMS) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	cat, err := c.categories.FindByID(id)
	if err != nil {
		serverError(w, "find category", err)
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			writeError(w, http.StatusBadRequest, "category cannot be its own parent")
			return
		}
		parent, err := c.categories.FindByID(*req.ParentID)
		if err != nil {
			serverError(w, "find parent category", err)
			return
		}
		if parent == nil {
			writeError(w, http.StatusBadRequest, "parent category does not exist")
			return
		}
	}

	exists, err := c.categories.NameOrSlugExists(req.Name, req.Slug, &id)
	if err != nil {
		serverError(w, "check category exists", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a category with this name or slug already exists")
		return
	}

	cat.Name = req.Name
	cat.Slug = req.Slug
	cat.Description = req.Description
	cat.ParentID = req.ParentID
	cat.ShowInHeader = req.ShowInHeader
	cat.IsMainHeader = req.IsMainHeader

	if err := c.categories.Update(cat); err != nil {
		serverError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CategoryDelete removes a category. Categories with children are
// refused; reparent or delete the children first.
func (c *CMS) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	cat, err := c.categories.FindByID(id)
	if err != nil {
		serverError(w, "find category", err)
		return
	}
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	children, err := c.categories.ChildCount(id)
	if err != nil {
		serverError(w, "category child count", err)
		return
	}
	if children > 0 {
		writeError(w, http.StatusBadRequest, "category has child categories and cannot be deleted")
		return
	}

	if err := c.categories.Delete(id); err != nil {
		serverError(w, "delete category", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
