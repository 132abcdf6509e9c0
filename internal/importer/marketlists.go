// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"finwire/internal/models"
	"finwire/internal/store"
)

// marketListColumns is the exact header set a market-list CSV must carry,
// in any order.
var marketListColumns = []string{
	"slug", "title", "description", "filters",
	"static_items", "computed_type", "refresh_seconds", "visibility",
}

// MarketListImporter parses market-list CSV uploads and bulk-inserts them.
type MarketListImporter struct {
	lists *store.MarketListStore
}

// NewMarketListImporter returns an importer writing through the given store.
func NewMarketListImporter(lists *store.MarketListStore) *MarketListImporter {
	return &MarketListImporter{lists: lists}
}

// Import parses and validates the CSV, then inserts every row in one
// transaction. Any row error aborts the whole batch with zero inserts.
func (imp *MarketListImporter) Import(r io.Reader) (*Result, error) {
	lists, errs, err := ParseMarketLists(r)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return capErrors(errs), nil
	}

	inserted, err := imp.lists.InsertBatch(lists)
	if err != nil {
		return nil, err
	}
	return &Result{Inserted: inserted}, nil
}

// ParseMarketLists reads the CSV and validates every row, collecting all
// row-level errors. The returned lists are only meaningful when the error
// list is empty.
func ParseMarketLists(r io.Reader) ([]models.MarketList, []RowError, error) {
	rows, err := readRows(r, marketListColumns)
	if err != nil {
		return nil, nil, err
	}

	var lists []models.MarketList
	var errs []RowError
	seen := make(map[string]int) // slug → first line

	for i, row := range rows {
		line := i + 2 // 1-based, after the header row
		m, rowErrs := parseMarketListRow(row, line)
		if dup, ok := seen[m.Slug]; ok && m.Slug != "" {
			rowErrs = append(rowErrs, RowError{
				Line:    line,
				Message: fmt.Sprintf("duplicate slug %q (first used on line %d)", m.Slug, dup),
			})
		} else if m.Slug != "" {
			seen[m.Slug] = line
		}

		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		lists = append(lists, m)
	}
	return lists, errs, nil
}

// parseMarketListRow validates a single row and builds the model.
func parseMarketListRow(row map[string]string, line int) (models.MarketList, []RowError) {
	var errs []RowError
	fail := func(format string, args ...any) {
		errs = append(errs, RowError{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	m := models.MarketList{
		Slug:        strings.TrimSpace(row["slug"]),
		Title:       strings.TrimSpace(row["title"]),
		Description: row["description"],
	}

	if m.Slug == "" {
		fail("slug is required")
	}
	if m.Title == "" {
		fail("title is required")
	}

	// filters must be well-formed JSON; empty defaults to {}.
	filters := strings.TrimSpace(row["filters"])
	if filters == "" {
		filters = "{}"
	}
	if !json.Valid([]byte(filters)) {
		fail("filters is not valid JSON")
	} else {
		m.Filters = json.RawMessage(filters)
	}

	// static_items is a semicolon-separated list of instrument identifiers.
	m.StaticItems = splitItems(row["static_items"])

	m.ComputedType = models.ComputedType(strings.TrimSpace(row["computed_type"]))
	if !m.ComputedType.Valid() {
		fail("computed_type must be static or dynamic, got %q", row["computed_type"])
	}

	refresh := strings.TrimSpace(row["refresh_seconds"])
	if refresh == "" {
		fail("refresh_seconds is required")
	} else {
		secs, err := strconv.Atoi(refresh)
		if err != nil {
			fail("refresh_seconds must be an integer, got %q", refresh)
		} else if secs < 0 {
			fail("refresh_seconds must not be negative")
		} else {
			m.RefreshSeconds = secs
		}
	}

	m.Visibility = models.Visibility(strings.TrimSpace(row["visibility"]))
	if !m.Visibility.Valid() {
		fail("visibility must be public or private, got %q", row["visibility"])
	}

	return m, errs
}

// splitItems splits a semicolon-separated item list, dropping empties.
func splitItems(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
