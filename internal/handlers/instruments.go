// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"finwire/internal/models"
	"finwire/internal/store"
)

// InstrumentsList returns a page of instruments. Supported query
// parameters: search, exchange, sector, page, limit.
func (c *CMS) InstrumentsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pagination(r)

	items, total, err := c.instruments.List(store.InstrumentFilter{
		Search:   q.Get("search"),
		Exchange: q.Get("exchange"),
		Sector:   q.Get("sector"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		serverError(w, "list instruments", err)
		return
	}
	if items == nil {
		items = []models.Instrument{}
	}
	writePage(w, items, total, page, limit)
}

// InstrumentGet returns one instrument by its "<SYMBOL>.<EXCHANGE>" id.
func (c *CMS) InstrumentGet(w http.ResponseWriter, r *http.Request) {
	item, err := c.instruments.FindByID(chi.URLParam(r, "id"))
	if err != nil {
		serverError(w, "find instrument", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "instrument not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// instrumentRequest is the upsert body for instruments.
type instrumentRequest struct {
	ID            string  `json:"id"`
	DisplaySymbol string  `json:"display_symbol"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Sector        string  `json:"sector"`
	TickSize      float64 `json:"tick_size"`
	MarketCap     float64 `json:"market_cap"`
	ISIN          *string `json:"isin"`
	CUSIP         *string `json:"cusip"`
	SEDOL         *string `json:"sedol"`
}

// InstrumentUpsert inserts or updates an instrument. Symbol and exchange
// are derived from the identifier and never change after creation.
func (c *CMS) InstrumentUpsert(w http.ResponseWriter, r *http.Request) {
	var req instrumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.ID = strings.ToUpper(strings.TrimSpace(req.ID))
	if !validInstrumentID(req.ID) {
		writeError(w, http.StatusBadRequest, "id must look like SYMBOL.EXCHANGE")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TickSize < 0 || req.MarketCap < 0 {
		writeError(w, http.StatusBadRequest, "tick_size and market_cap must not be negative")
		return
	}

	dot := strings.LastIndex(req.ID, ".")
	symbol, exchange := req.ID[:dot], req.ID[dot+1:]

	display := req.DisplaySymbol
	if display == "" {
		display = symbol
	}

	item, err := c.instruments.Upsert(&models.Instrument{
		ID:            req.ID,
		Symbol:        symbol,
		Exchange:      exchange,
		DisplaySymbol: display,
		Name:          req.Name,
		Type:          req.Type,
		Sector:        req.Sector,
		TickSize:      req.TickSize,
		MarketCap:     req.MarketCap,
		ISIN:          req.ISIN,
		CUSIP:         req.CUSIP,
		SEDOL:         req.SEDOL,
	})
	if err != nil {
		serverError(w, "upsert instrument", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// InstrumentDelete removes an instrument.
func (c *CMS) InstrumentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := c.instruments.FindByID(id)
	if err != nil {
		serverError(w, "find instrument", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "instrument not found")
		return
	}

	if err := c.instruments.Delete(id); err != nil {
		serverError(w, "delete instrument", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
