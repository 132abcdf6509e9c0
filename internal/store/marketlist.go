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

// MarketListStore manages curated market lists.
type MarketListStore struct {
	db *sql.DB
}

// NewMarketListStore returns a new MarketListStore.
func NewMarketListStore(db *sql.DB) *MarketListStore {
	return &MarketListStore{db: db}
}

const marketListColumns = `id, slug, title, description, filters, static_items, computed_type,
	refresh_seconds, visibility, meta, last_updated, created_at`

// scanMarketList scans a row into a MarketList struct. Filters and meta
// stay raw JSON; static_items is decoded from its JSONB column.
func scanMarketList(scanner interface{ Scan(...any) error }) (*models.MarketList, error) {
	var m models.MarketList
	var filters, staticItems, meta []byte
	err := scanner.Scan(
		&m.ID, &m.Slug, &m.Title, &m.Description, &filters, &staticItems,
		&m.ComputedType, &m.RefreshSeconds, &m.Visibility, &meta,
		&m.LastUpdated, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Filters = json.RawMessage(filters)
	m.Meta = json.RawMessage(meta)
	if err := json.Unmarshal(staticItems, &m.StaticItems); err != nil {
		return nil, fmt.Errorf("decode static items: %w", err)
	}
	return &m, nil
}

// encodeListFields prepares the JSONB column values for writes.
func encodeListFields(m *models.MarketList) (filters, staticItems, meta []byte, err error) {
	filters = m.Filters
	if len(filters) == 0 {
		filters = []byte(`{}`)
	}
	meta = m.Meta
	if len(meta) == 0 {
		meta = []byte(`{}`)
	}
	items := m.StaticItems
	if items == nil {
		items = []string{}
	}
	staticItems, err = json.Marshal(items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode static items: %w", err)
	}
	return filters, staticItems, meta, nil
}

// List returns market lists, optionally restricted to a visibility.
func (s *MarketListStore) List(visibility models.Visibility) ([]models.MarketList, error) {
	query := `SELECT ` + marketListColumns + ` FROM market_lists`
	var args []any
	if visibility != "" {
		query += ` WHERE visibility = $1`
		args = append(args, visibility)
	}
	query += ` ORDER BY slug`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list market lists: %w", err)
	}
	defer rows.Close()

	var items []models.MarketList
	for rows.Next() {
		m, err := scanMarketList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market list: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a market list by slug. Returns nil if not found.
func (s *MarketListStore) FindBySlug(slug string) (*models.MarketList, error) {
	row := s.db.QueryRow(`SELECT `+marketListColumns+` FROM market_lists WHERE slug = $1`, slug)
	m, err := scanMarketList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find market list by slug: %w", err)
	}
	return m, nil
}

// FindByID retrieves a market list by ID. Returns nil if not found.
func (s *MarketListStore) FindByID(id uuid.UUID) (*models.MarketList, error) {
	row := s.db.QueryRow(`SELECT `+marketListColumns+` FROM market_lists WHERE id = $1`, id)
	m, err := scanMarketList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find market list by id: %w", err)
	}
	return m, nil
}

// SlugExists reports whether a market list already uses the given slug.
func (s *MarketListStore) SlugExists(slug string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if exclude == nil {
		err = s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM market_lists WHERE slug = $1)`, slug).Scan(&exists)
	} else {
		err = s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM market_lists WHERE slug = $1 AND id <> $2)`, slug, *exclude).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("market list slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new market list and returns it.
func (s *MarketListStore) Create(m *models.MarketList) (*models.MarketList, error) {
	filters, staticItems, meta, err := encodeListFields(m)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO market_lists (slug, title, description, filters, static_items,
		                          computed_type, refresh_seconds, visibility, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+marketListColumns,
		m.Slug, m.Title, m.Description, filters, staticItems,
		m.ComputedType, m.RefreshSeconds, m.Visibility, meta,
	)
	result, err := scanMarketList(row)
	if err != nil {
		return nil, fmt.Errorf("create market list: %w", err)
	}
	return result, nil
}

// Update modifies an existing market list and bumps last_updated.
// The cached resolved payload is NOT invalidated; it ages out by TTL.
func (s *MarketListStore) Update(m *models.MarketList) error {
	filters, staticItems, meta, err := encodeListFields(m)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE market_lists SET
			slug = $1, title = $2, description = $3, filters = $4, static_items = $5,
			computed_type = $6, refresh_seconds = $7, visibility = $8, meta = $9,
			last_updated = NOW()
		WHERE id = $10
	`, m.Slug, m.Title, m.Description, filters, staticItems,
		m.ComputedType, m.RefreshSeconds, m.Visibility, meta, m.ID)
	if err != nil {
		return fmt.Errorf("update market list: %w", err)
	}
	return nil
}

// Delete removes a market list by ID.
func (s *MarketListStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM market_lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete market list: %w", err)
	}
	return nil
}

// InsertBatch inserts all lists in one transaction. Used by the CSV
// importer: either every row lands or none does.
func (s *MarketListStore) InsertBatch(lists []models.MarketList) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_lists (slug, title, description, filters, static_items,
		                          computed_type, refresh_seconds, visibility, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i := range lists {
		filters, staticItems, meta, err := encodeListFields(&lists[i])
		if err != nil {
			return 0, err
		}
		m := &lists[i]
		if _, err := stmt.Exec(
			m.Slug, m.Title, m.Description, filters, staticItems,
			m.ComputedType, m.RefreshSeconds, m.Visibility, meta,
		); err != nil {
			return 0, fmt.Errorf("insert market list %q: %w", m.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch insert: %w", err)
	}
	return len(lists), nil
}
