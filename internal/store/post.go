// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finwire/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, content, excerpt, cover_image, category_id, author_id,
	status, seo_meta_title, seo_meta_description, seo_keywords, views, trending,
	published_at, created_at, updated_at`

// scanPost scans a row into a Post struct, decoding the JSONB keyword list.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var keywords []byte
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImage,
		&p.CategoryID, &p.AuthorID, &p.Status,
		&p.SEO.MetaTitle, &p.SEO.MetaDescription, &keywords,
		&p.Views, &p.Trending, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(keywords, &p.SEO.Keywords); err != nil {
		return nil, fmt.Errorf("decode seo keywords: %w", err)
	}
	return &p, nil
}

// PostFilter narrows List results. Zero values mean "no filter".
type PostFilter struct {
	Search     string
	Status     models.PostStatus
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
	Trending   *bool
	Page       int // 1-based
	Limit      int
}

// List returns a page of posts matching the filter plus the total match
// count, ordered by creation date descending.
func (s *PostStore) List(f PostFilter) ([]models.Post, int, error) {
	where := "TRUE"
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where += fmt.Sprintf(" AND (p.title ILIKE %s OR p.excerpt ILIKE %s)", p, p)
	}
	if f.Status != "" {
		where += " AND p.status = " + arg(f.Status)
	}
	if f.CategoryID != nil {
		where += " AND p.category_id = " + arg(*f.CategoryID)
	}
	if f.TagID != nil {
		where += " AND EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = " + arg(*f.TagID) + ")"
	}
	if f.Trending != nil {
		where += " AND p.trending = " + arg(*f.Trending)
	}

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	page, limit := normalizePage(f.Page, f.Limit)
	query := `SELECT ` + prefixColumns("p", postColumns) + ` FROM posts p WHERE ` + where +
		` ORDER BY p.created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachTagIDs(items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	if err := s.attachTagIDsOne(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	if err := s.attachTagIDsOne(p); err != nil {
		return nil, err
	}
	return p, nil
}

// SlugExists reports whether a post already uses the given slug.
// The exclude ID skips the post being updated. This is a read-then-write
// pre-check: two concurrent creates can both pass it, and the unique
// index rejects the loser at insert time.
func (s *PostStore) SlugExists(slug string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if exclude == nil {
		err = s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, *exclude).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("post slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and its tag associations in one transaction.
// If the post is created directly as published, published_at is set now.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	keywords, err := json.Marshal(keywordsOrEmpty(p.SEO.Keywords))
	if err != nil {
		return nil, fmt.Errorf("encode seo keywords: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO posts (title, slug, content, excerpt, cover_image, category_id, author_id,
		                   status, seo_meta_title, seo_meta_description, seo_keywords,
		                   trending, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage, p.CategoryID, p.AuthorID,
		p.Status, p.SEO.MetaTitle, p.SEO.MetaDescription, keywords,
		p.Trending, p.PublishedAt,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := replaceTagsTx(tx, result.ID, p.TagIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create post: %w", err)
	}

	result.TagIDs = p.TagIDs
	return result, nil
}

// Update modifies an existing post and replaces its tag associations.
// published_at is set exactly once, on the first transition to published;
// later status changes never touch it.
func (s *PostStore) Update(p *models.Post) error {
	keywords, err := json.Marshal(keywordsOrEmpty(p.SEO.Keywords))
	if err != nil {
		return fmt.Errorf("encode seo keywords: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, cover_image = $5,
			category_id = $6, status = $7, seo_meta_title = $8,
			seo_meta_description = $9, seo_keywords = $10, trending = $11,
			published_at = CASE WHEN $7 = 'published' THEN COALESCE(published_at, NOW())
			                    ELSE published_at END,
			updated_at = NOW()
		WHERE id = $12
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.CoverImage,
		p.CategoryID, p.Status, p.SEO.MetaTitle,
		p.SEO.MetaDescription, keywords, p.Trending, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if err := replaceTagsTx(tx, p.ID, p.TagIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a post by ID. Tag associations cascade.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementViews bumps a post's view counter.
func (s *PostStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE posts SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment post views: %w", err)
	}
	return nil
}

// replaceTagsTx replaces all tag associations for a post inside a transaction.
func replaceTagsTx(tx *sql.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tagID); err != nil {
			return fmt.Errorf("insert post tag: %w", err)
		}
	}
	return nil
}

// attachTagIDsOne loads the tag ID list for a single post.
func (s *PostStore) attachTagIDsOne(p *models.Post) error {
	rows, err := s.db.Query(`SELECT tag_id FROM post_tags WHERE post_id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		p.TagIDs = append(p.TagIDs, id)
	}
	return rows.Err()
}

// attachTagIDs loads tag ID lists for a page of posts.
func (s *PostStore) attachTagIDs(posts []models.Post) error {
	for i := range posts {
		if err := s.attachTagIDsOne(&posts[i]); err != nil {
			return err
		}
	}
	return nil
}

// keywordsOrEmpty avoids encoding a nil slice as JSON null.
func keywordsOrEmpty(kw []string) []string {
	if kw == nil {
		return []string{}
	}
	return kw
}
