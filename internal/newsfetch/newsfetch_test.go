// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package newsfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchMockWithoutKey(t *testing.T) {
	c := New("", "", nil)
	articles, err := c.fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) == 0 {
		t.Fatal("expected mock articles without an API key")
	}
	for _, a := range articles {
		if a.Title == "" || a.URL == "" {
			t.Errorf("mock article missing fields: %+v", a)
		}
	}
}

func TestFetchFromFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("apiKey not forwarded, query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"articles": [{
				"source": {"id": "src-1", "name": "Wire"},
				"author": "A. Writer",
				"title": "Stocks rally",
				"description": "desc",
				"content": "body",
				"url": "https://example.com/a",
				"urlToImage": "https://example.com/a.jpg",
				"publishedAt": "2026-08-31T12:00:00Z"
			}]
		}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, nil)
	articles, err := c.fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	a := articles[0]
	if a.Title != "Stocks rally" || a.Source.Name != "Wire" {
		t.Errorf("unexpected article: %+v", a)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("publishedAt = %v", a.PublishedAt)
	}
}

func TestFetchFeedErrors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := New("bad-key", srv.URL, nil)
		if _, err := c.fetch(context.Background()); err == nil {
			t.Error("expected error for non-200 response")
		}
	})

	t.Run("bad status field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"error","articles":[]}`))
		}))
		defer srv.Close()

		c := New("key", srv.URL, nil)
		if _, err := c.fetch(context.Background()); err == nil {
			t.Error("expected error for feed status != ok")
		}
	})
}

func TestToSnapshot(t *testing.T) {
	now := time.Now()
	var a feedArticle
	a.Source.Name = "Wire"
	a.Title = "T"
	a.URL = "https://example.com/x"
	a.URLToImage = "https://example.com/x.jpg"
	a.PublishedAt = &now

	n := toSnapshot(a)
	// No source ID: the article URL doubles as the external ID.
	if n.ExternalID != a.URL {
		t.Errorf("external id = %q, want URL fallback", n.ExternalID)
	}
	if n.URLToImage == nil || *n.URLToImage != a.URLToImage {
		t.Errorf("url_to_image = %v", n.URLToImage)
	}
	if !n.IsActive || n.Category != "business" {
		t.Errorf("unexpected snapshot defaults: %+v", n)
	}

	a.Source.ID = "src-9"
	a.URLToImage = ""
	n = toSnapshot(a)
	if n.ExternalID != "src-9" {
		t.Errorf("external id = %q, want src-9", n.ExternalID)
	}
	if n.URLToImage != nil {
		t.Error("empty image should map to nil")
	}
}
