// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"finwire/internal/markets"
	"finwire/internal/store"
)

// CMS groups the content and market-data handlers under /api/cms.
// Read endpoints are public; mutations sit behind RequireAdmin in the
// router.
type CMS struct {
	categories  *store.CategoryStore
	tags        *store.TagStore
	posts       *store.PostStore
	news        *store.NewsStore
	navItems    *store.NavItemStore
	marketLists *store.MarketListStore
	instruments *store.InstrumentStore
	indices     *store.IndexStore
	resolver    *markets.Resolver
}

// NewCMS creates the CMS handler group.
func NewCMS(
	categories *store.CategoryStore,
	tags *store.TagStore,
	posts *store.PostStore,
	news *store.NewsStore,
	navItems *store.NavItemStore,
	marketLists *store.MarketListStore,
	instruments *store.InstrumentStore,
	indices *store.IndexStore,
	resolver *markets.Resolver,
) *CMS {
	return &CMS{
		categories:  categories,
		tags:        tags,
		posts:       posts,
		news:        news,
		navItems:    navItems,
		marketLists: marketLists,
		instruments: instruments,
		indices:     indices,
		resolver:    resolver,
	}
}
