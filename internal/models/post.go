// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether the status is one of the known values.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// SEO holds search-engine metadata for a post. Length limits are enforced
// at validation time: MetaTitle ≤ 60 runes, MetaDescription ≤ 160 runes.
type SEO struct {
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
}

// Post is a CMS-authored article. PublishedAt is set exactly once, on the
// first transition to published, and never changes afterwards.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Status      PostStatus `json:"status"`
	SEO         SEO        `json:"seo"`
	Views       int64      `json:"views"`
	Trending    bool       `json:"trending"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	TagIDs   []uuid.UUID `json:"tag_ids"`
	Category *Category   `json:"category,omitempty"`
	Tags     []Tag       `json:"tags,omitempty"`
	Author   *User       `json:"author,omitempty"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
