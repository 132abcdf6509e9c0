// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"finwire/internal/models"
)

// NewsStore manages external-news snapshots. The table is append-only:
// every fetch of an article inserts a fresh snapshot, so external_id
// repeats across rows by design.
type NewsStore struct {
	db *sql.DB
}

// NewNewsStore returns a new NewsStore.
func NewNewsStore(db *sql.DB) *NewsStore {
	return &NewsStore{db: db}
}

const newsColumns = `id, external_id, title, description, content, author, source, category,
	tags, url, url_to_image, views, is_active, published_at, fetched_at`

// scanNews scans a row into an ExternalNews struct.
func scanNews(scanner interface{ Scan(...any) error }) (*models.ExternalNews, error) {
	var n models.ExternalNews
	var tags []byte
	err := scanner.Scan(
		&n.ID, &n.ExternalID, &n.Title, &n.Description, &n.Content,
		&n.Author, &n.Source, &n.Category, &tags, &n.URL, &n.URLToImage,
		&n.Views, &n.IsActive, &n.PublishedAt, &n.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &n.Tags); err != nil {
		return nil, fmt.Errorf("decode news tags: %w", err)
	}
	return &n, nil
}

// NewsFilter narrows List results. Zero values mean "no filter".
type NewsFilter struct {
	Search   string
	Source   string
	Category string
	IsActive *bool
	Page     int // 1-based
	Limit    int
}

// List returns a page of news snapshots matching the filter plus the
// total match count, newest fetch first.
func (s *NewsStore) List(f NewsFilter) ([]models.ExternalNews, int, error) {
	where := "TRUE"
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where += fmt.Sprintf(" AND (title ILIKE %s OR description ILIKE %s)", p, p)
	}
	if f.Source != "" {
		where += " AND source = " + arg(f.Source)
	}
	if f.Category != "" {
		where += " AND category = " + arg(f.Category)
	}
	if f.IsActive != nil {
		where += " AND is_active = " + arg(*f.IsActive)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM external_news WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	page, limit := normalizePage(f.Page, f.Limit)
	query := `SELECT ` + newsColumns + ` FROM external_news WHERE ` + where +
		` ORDER BY fetched_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []models.ExternalNews
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, *n)
	}
	return items, total, rows.Err()
}

// FindByID retrieves a news snapshot by ID. Returns nil if not found.
func (s *NewsStore) FindByID(id uuid.UUID) (*models.ExternalNews, error) {
	row := s.db.QueryRow(`SELECT `+newsColumns+` FROM external_news WHERE id = $1`, id)
	n, err := scanNews(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find news by id: %w", err)
	}
	return n, nil
}

// Insert appends a news snapshot and returns it.
func (s *NewsStore) Insert(n *models.ExternalNews) (*models.ExternalNews, error) {
	tags, err := json.Marshal(tagsOrEmpty(n.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode news tags: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO external_news (external_id, title, description, content, author,
		                           source, category, tags, url, url_to_image,
		                           is_active, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+newsColumns,
		n.ExternalID, n.Title, n.Description, n.Content, n.Author,
		n.Source, n.Category, tags, n.URL, n.URLToImage,
		n.IsActive, n.PublishedAt,
	)
	result, err := scanNews(row)
	if err != nil {
		return nil, fmt.Errorf("insert news: %w", err)
	}
	return result, nil
}

// SetActive toggles a snapshot's visibility on public listings.
func (s *NewsStore) SetActive(id uuid.UUID, active bool) error {
	_, err := s.db.Exec(`UPDATE external_news SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set news active: %w", err)
	}
	return nil
}

// Delete removes a news snapshot by ID.
func (s *NewsStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM external_news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

// IncrementViews bumps a snapshot's view counter.
func (s *NewsStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE external_news SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment news views: %w", err)
	}
	return nil
}

// tagsOrEmpty avoids encoding a nil slice as JSON null.
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
