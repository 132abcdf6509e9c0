// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package newsfetch pulls articles from a third-party news feed and
// persists them as append-only ExternalNews snapshots. Without an API key
// the client serves built-in mock articles so development environments
// work offline.
package newsfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"finwire/internal/models"
	"finwire/internal/store"
)

// defaultFeedURL is the NewsAPI-compatible endpoint queried when no
// override is configured.
const defaultFeedURL = "https://newsapi.org/v2/top-headlines?category=business"

// feedResponse is the wire shape of the upstream feed.
type feedResponse struct {
	Status   string        `json:"status"`
	Articles []feedArticle `json:"articles"`
}

// feedArticle is one article as delivered by the feed.
type feedArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// Client fetches the news feed and writes snapshots through the news store.
type Client struct {
	apiKey     string
	feedURL    string
	httpClient *http.Client
	news       *store.NewsStore
}

// New creates a news-fetch client. An empty apiKey switches the client to
// mock mode; an empty feedURL uses the default endpoint.
func New(apiKey, feedURL string, news *store.NewsStore) *Client {
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	return &Client{
		apiKey:     apiKey,
		feedURL:    feedURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		news:       news,
	}
}

// Sync fetches the feed and appends one snapshot per article. Articles
// that fail to insert are logged and skipped; the rest of the batch still
// lands. Returns the number of snapshots stored.
func (c *Client) Sync(ctx context.Context) (int, error) {
	articles, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}

	var stored int
	for _, a := range articles {
		snapshot := toSnapshot(a)
		if _, err := c.news.Insert(snapshot); err != nil {
			slog.Error("news snapshot insert failed", "external_id", snapshot.ExternalID, "error", err)
			continue
		}
		stored++
	}

	slog.Info("news sync complete", "fetched", len(articles), "stored", stored)
	return stored, nil
}

// fetch retrieves articles from the feed, or the mock set without a key.
func (c *Client) fetch(ctx context.Context) ([]feedArticle, error) {
	if c.apiKey == "" {
		slog.Warn("news api key not configured, serving mock articles")
		return mockArticles(), nil
	}

	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if feed.Status != "ok" {
		return nil, fmt.Errorf("feed status %q", feed.Status)
	}

	return feed.Articles, nil
}

// toSnapshot maps a feed article onto the ExternalNews model. The article
// URL doubles as the external ID when the feed supplies none.
func toSnapshot(a feedArticle) *models.ExternalNews {
	externalID := a.Source.ID
	if externalID == "" {
		externalID = a.URL
	}

	var image *string
	if a.URLToImage != "" {
		image = &a.URLToImage
	}

	return &models.ExternalNews{
		ExternalID:  externalID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Author:      a.Author,
		Source:      a.Source.Name,
		Category:    "business",
		URL:         a.URL,
		URLToImage:  image,
		IsActive:    true,
		PublishedAt: a.PublishedAt,
	}
}

// mockArticles returns a small fixed feed for keyless environments.
func mockArticles() []feedArticle {
	now := time.Now().UTC()
	mk := func(title, desc, source, url string) feedArticle {
		var a feedArticle
		a.Source.ID = ""
		a.Source.Name = source
		a.Title = title
		a.Description = desc
		a.Content = desc
		a.URL = url
		a.PublishedAt = &now
		return a
	}
	return []feedArticle{
		mk("Markets open mixed as yields climb",
			"Equity futures point to a flat open while treasury yields extend their advance.",
			"Mock Wire", "https://news.example.com/markets-open-mixed"),
		mk("Tech megacaps lead afternoon rebound",
			"Large-cap technology names recovered early losses in heavy volume.",
			"Mock Wire", "https://news.example.com/tech-rebound"),
		mk("Oil slips on inventory build",
			"Crude prices fell after a larger than expected inventory build.",
			"Mock Wire", "https://news.example.com/oil-slips"),
	}
}
