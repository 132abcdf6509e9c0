// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "strings"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps pagination parameters to sane values.
// Page is 1-based.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// Pages returns the number of pages needed for total items at the given limit.
func Pages(total, limit int) int {
	if limit < 1 {
		limit = defaultPageSize
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// prefixColumns qualifies each column in a comma-separated list with a
// table alias, for queries that join or alias tables.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
