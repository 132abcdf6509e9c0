// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ComputedType distinguishes fixed market lists from periodically
// recomputed rankings.
type ComputedType string

const (
	ComputedStatic  ComputedType = "static"
	ComputedDynamic ComputedType = "dynamic"
)

// Valid reports whether the computed type is one of the known values.
func (t ComputedType) Valid() bool {
	return t == ComputedStatic || t == ComputedDynamic
}

// Visibility controls whether a market list appears on public endpoints.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether the visibility is one of the known values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// MarketList is a named, cacheable collection of instrument identifiers.
// Filters and Meta are opaque JSON documents: validated for being
// well-formed JSON on the way in, never for schema.
type MarketList struct {
	ID             uuid.UUID       `json:"id"`
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Filters        json.RawMessage `json:"filters"`
	StaticItems    []string        `json:"static_items"`
	ComputedType   ComputedType    `json:"computed_type"`
	RefreshSeconds int             `json:"refresh_seconds"`
	Visibility     Visibility      `json:"visibility"`
	Meta           json.RawMessage `json:"meta"`
	LastUpdated    time.Time       `json:"last_updated"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Instrument is a tradeable security identified by "<SYMBOL>.<EXCHANGE>".
type Instrument struct {
	ID            string    `json:"id"` // "AAPL.NASDAQ"
	Symbol        string    `json:"symbol"`
	Exchange      string    `json:"exchange"`
	DisplaySymbol string    `json:"display_symbol"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Sector        string    `json:"sector"`
	TickSize      float64   `json:"tick_size"`
	MarketCap     float64   `json:"market_cap"`
	ISIN          *string   `json:"isin,omitempty"`
	CUSIP         *string   `json:"cusip,omitempty"`
	SEDOL         *string   `json:"sedol,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Index is a market index identified by a human code (e.g. "SPX").
type Index struct {
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Exchange  string        `json:"exchange"`
	Members   []IndexMember `json:"members"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IndexMember ties an instrument to an index with a weight in [0,100].
type IndexMember struct {
	InstrumentID string  `json:"instrument"`
	Weight       float64 `json:"weight"`
}

// Bar is a single 1-minute OHLC sample for a symbol. Bars feed the
// top-movers aggregation.
type Bar struct {
	Symbol string    `json:"symbol"`
	Ts     time.Time `json:"ts"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
