// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ExternalNews is a third-party news article persisted as an append-only
// snapshot. ExternalID is deliberately NOT unique: re-fetching the same
// article stores a new snapshot rather than overwriting the old one.
type ExternalNews struct {
	ID          uuid.UUID  `json:"id"`
	ExternalID  string     `json:"external_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Source      string     `json:"source"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	URL         string     `json:"url"`
	URLToImage  *string    `json:"url_to_image,omitempty"`
	Views       int64      `json:"views"`
	IsActive    bool       `json:"is_active"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"`
}
