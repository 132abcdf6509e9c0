// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markets resolves market lists into concrete instrument
// identifier lists, memoizing results in Redis for the list's configured
// refresh interval.
package markets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finwire/internal/cache"
	"finwire/internal/models"
	"finwire/internal/store"
)

// ErrNotFound is returned when no market list exists for a slug.
var ErrNotFound = errors.New("market list not found")

const (
	// topMoversSlug is the only dynamic list with an actual computation;
	// every other dynamic slug resolves to an empty computed list.
	topMoversSlug = "top-movers"

	// topMoversWindow is the trailing window the ranking looks at.
	topMoversWindow = 24 * time.Hour

	// topMoversLimit caps the ranking size.
	topMoversLimit = 10
)

// ResolvedList is the payload served by the items endpoint and stored in
// the cache verbatim.
type ResolvedList struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Items      []string  `json:"items"`
	ComputedAt time.Time `json:"computed_at"`
}

// Resolver turns a market-list slug into its item list, serving from the
// cache when a fresh enough payload exists.
type Resolver struct {
	lists *store.MarketListStore
	bars  *store.BarStore
	cache *cache.ItemCache
}

// NewResolver creates a Resolver over the given stores and cache.
func NewResolver(lists *store.MarketListStore, bars *store.BarStore, itemCache *cache.ItemCache) *Resolver {
	return &Resolver{lists: lists, bars: bars, cache: itemCache}
}

// Resolve returns the serialized resolved payload for a slug.
//
// The cache is consulted before the list's computed type is even looked
// at, so static lists are served from cache too — an admin edit can be
// invisible for up to refresh_seconds, since writes never invalidate.
// Concurrent misses all recompute and overwrite the same key; the last
// write wins and the payloads are equivalent.
func (r *Resolver) Resolve(ctx context.Context, slug string) ([]byte, error) {
	list, err := r.lists.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrNotFound
	}

	if payload, ok := r.cache.Get(ctx, slug); ok {
		return payload, nil
	}

	items, err := r.computeItems(list)
	if err != nil {
		return nil, err
	}

	resolved := ResolvedList{
		Slug:       list.Slug,
		Title:      list.Title,
		Items:      items,
		ComputedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("marshal resolved list: %w", err)
	}

	r.cache.Set(ctx, slug, payload, time.Duration(list.RefreshSeconds)*time.Second)
	slog.Debug("market list resolved",
		"slug", slug,
		"type", list.ComputedType,
		"items", len(items),
	)
	return payload, nil
}

// computeItems produces the item list for a market list.
func (r *Resolver) computeItems(list *models.MarketList) ([]string, error) {
	if list.ComputedType == models.ComputedStatic {
		return itemsOrEmpty(list.StaticItems), nil
	}

	// Dynamic lists: static_items (if any) are prepended verbatim to the
	// computed ranking.
	items := itemsOrEmpty(list.StaticItems)

	if list.Slug != topMoversSlug {
		return items, nil
	}

	movers, err := r.bars.TopMovers(time.Now().Add(-topMoversWindow), topMoversLimit)
	if err != nil {
		return nil, err
	}
	for _, m := range movers {
		items = append(items, m.Symbol)
	}
	return items, nil
}

// itemsOrEmpty keeps the JSON payload an array rather than null.
func itemsOrEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
