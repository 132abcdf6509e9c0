// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"finwire/internal/models"
)

// testAuthor creates a throwaway author for post tests.
func testAuthor(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	s := NewUserStore(db)
	email := "post-test-author@finwire.test"
	cleanUsers(t, db, email)

	u, err := s.Create("Post Author", email, "pw", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })
	return u.ID
}

func TestPostStorePublishOnce(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	slug := "store-test-publish-once"
	cleanPosts(t, db, slug)
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	p, err := s.Create(&models.Post{
		Title: "Publish Once", Slug: slug, Content: "body",
		AuthorID: author, Status: models.PostStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.PublishedAt != nil {
		t.Error("draft should have no published_at")
	}

	// First transition to published stamps the time.
	p.Status = models.PostStatusPublished
	if err := s.Update(p); err != nil {
		t.Fatalf("Update to published: %v", err)
	}
	published, err := s.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatal("published_at not set on publish")
	}
	firstStamp := *published.PublishedAt

	// Unpublish and republish: the stamp must not move.
	published.Status = models.PostStatusDraft
	if err := s.Update(published); err != nil {
		t.Fatalf("Update to draft: %v", err)
	}
	published.Status = models.PostStatusPublished
	if err := s.Update(published); err != nil {
		t.Fatalf("Update republish: %v", err)
	}

	again, err := s.FindByID(p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if again.PublishedAt == nil || !again.PublishedAt.Equal(firstStamp) {
		t.Errorf("published_at moved: %v -> %v", firstStamp, again.PublishedAt)
	}
}

func TestPostStoreCreatePublishedDirectly(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	slug := "store-test-direct-publish"
	cleanPosts(t, db, slug)
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	p, err := s.Create(&models.Post{
		Title: "Direct", Slug: slug, Content: "body",
		AuthorID: author, Status: models.PostStatusPublished,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.PublishedAt == nil {
		t.Error("creating as published should set published_at")
	}
}

func TestPostStoreListAndFilters(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	tags := NewTagStore(db)
	author := testAuthor(t, db)

	slugs := []string{"store-test-filter-a", "store-test-filter-b"}
	cleanPosts(t, db, slugs...)
	t.Cleanup(func() {
		cleanPosts(t, db, slugs...)
		db.Exec("DELETE FROM tags WHERE slug = 'store-test-tag'")
	})

	tag, err := tags.Create(&models.Tag{Name: "Store Test Tag", Slug: "store-test-tag"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if _, err := s.Create(&models.Post{
		Title: "Filter Alpha Unique", Slug: slugs[0], Content: "body",
		AuthorID: author, Status: models.PostStatusPublished,
		TagIDs: []uuid.UUID{tag.ID},
	}); err != nil {
		t.Fatalf("create post a: %v", err)
	}
	if _, err := s.Create(&models.Post{
		Title: "Filter Beta Unique", Slug: slugs[1], Content: "body",
		AuthorID: author, Status: models.PostStatusDraft,
	}); err != nil {
		t.Fatalf("create post b: %v", err)
	}

	// Search by title.
	items, total, err := s.List(PostFilter{Search: "Filter Alpha Unique"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Slug != slugs[0] {
		t.Errorf("search results: total=%d items=%v", total, items)
	}
	if len(items[0].TagIDs) != 1 || items[0].TagIDs[0] != tag.ID {
		t.Errorf("tag ids not attached: %v", items[0].TagIDs)
	}

	// Filter by tag.
	_, total, err = s.List(PostFilter{TagID: &tag.ID})
	if err != nil {
		t.Fatalf("List by tag: %v", err)
	}
	if total != 1 {
		t.Errorf("tag filter total = %d, want 1", total)
	}

	// Status filter hides the draft.
	items, _, err = s.List(PostFilter{Search: "Filter Beta Unique", Status: models.PostStatusPublished})
	if err != nil {
		t.Fatalf("List status: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("draft leaked through published filter: %v", items)
	}
}

func TestPostStoreSlugExists(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	author := testAuthor(t, db)

	slug := "store-test-slug-exists"
	cleanPosts(t, db, slug)
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	p, err := s.Create(&models.Post{
		Title: "Slug Exists", Slug: slug, Content: "body",
		AuthorID: author, Status: models.PostStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := s.SlugExists(slug, nil)
	if err != nil || !exists {
		t.Errorf("SlugExists = %v, %v", exists, err)
	}
	exists, err = s.SlugExists(slug, &p.ID)
	if err != nil {
		t.Fatalf("SlugExists exclude: %v", err)
	}
	if exists {
		t.Error("exclude ID should skip the post itself")
	}
}
