// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"finwire/internal/models"
)

// IndicesList returns all indices with their weighted members.
func (c *CMS) IndicesList(w http.ResponseWriter, r *http.Request) {
	items, err := c.indices.List()
	if err != nil {
		serverError(w, "list indices", err)
		return
	}
	if items == nil {
		items = []models.Index{}
	}
	writeJSON(w, http.StatusOK, items)
}

// IndexGet returns one index by code.
func (c *CMS) IndexGet(w http.ResponseWriter, r *http.Request) {
	idx, err := c.indices.FindByCode(chi.URLParam(r, "code"))
	if err != nil {
		serverError(w, "find index", err)
		return
	}
	if idx == nil {
		writeError(w, http.StatusNotFound, "index not found")
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

// indexRequest is the create/update body for indices.
type indexRequest struct {
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Exchange string               `json:"exchange"`
	Members  []models.IndexMember `json:"members"`
}

// validate normalizes the request and reports the first problem found.
// Each member weight must land in [0,100]; the sum is not constrained.
func (req *indexRequest) validate(c *CMS) (string, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	if req.Code == "" {
		return "code is required", nil
	}
	if req.Name == "" {
		return "name is required", nil
	}
	for _, m := range req.Members {
		if !validInstrumentID(m.InstrumentID) {
			return "member is not a valid instrument id: " + m.InstrumentID, nil
		}
		if !validWeight(m.Weight) {
			return "member weight must be between 0 and 100", nil
		}
		inst, err := c.instruments.FindByID(m.InstrumentID)
		if err != nil {
			return "", err
		}
		if inst == nil {
			return "member instrument does not exist: " + m.InstrumentID, nil
		}
	}
	return "", nil
}

// IndexCreate adds a new index with its members.
func (c *CMS) IndexCreate(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := req.validate(c)
	if err != nil {
		serverError(w, "validate index", err)
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.indices.CodeExists(req.Code)
	if err != nil {
		serverError(w, "check index code", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "an index with this code already exists")
		return
	}

	idx, err := c.indices.Create(&models.Index{
		Code:     req.Code,
		Name:     req.Name,
		Exchange: req.Exchange,
		Members:  req.Members,
	})
	if err != nil {
		serverError(w, "create index", err)
		return
	}
	writeJSON(w, http.StatusCreated, idx)
}

// IndexUpdate modifies an index and replaces its member list.
func (c *CMS) IndexUpdate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	idx, err := c.indices.FindByCode(code)
	if err != nil {
		serverError(w, "find index", err)
		return
	}
	if idx == nil {
		writeError(w, http.StatusNotFound, "index not found")
		return
	}

	var req indexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Code = code // code is the immutable key

	msg, err := req.validate(c)
	if err != nil {
		serverError(w, "validate index", err)
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	idx.Name = req.Name
	idx.Exchange = req.Exchange
	idx.Members = req.Members

	if err := c.indices.Update(idx); err != nil {
		serverError(w, "update index", err)
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

// IndexDelete removes an index. Members cascade away.
func (c *CMS) IndexDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	idx, err := c.indices.FindByCode(code)
	if err != nil {
		serverError(w, "find index", err)
		return
	}
	if idx == nil {
		writeError(w, http.StatusNotFound, "index not found")
		return
	}

	if err := c.indices.Delete(code); err != nil {
		serverError(w, "delete index", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
