// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"finwire/internal/models"
)

// NavItemStore manages navigation bar entries.
type NavItemStore struct {
	db *sql.DB
}

// NewNavItemStore returns a new NavItemStore.
func NewNavItemStore(db *sql.DB) *NavItemStore {
	return &NavItemStore{db: db}
}

const navItemColumns = `id, name, href, sort_order, is_active, created_at, updated_at`

// scanNavItem scans a row into a NavItem struct.
func scanNavItem(scanner interface{ Scan(...any) error }) (*models.NavItem, error) {
	var n models.NavItem
	err := scanner.Scan(
		&n.ID, &n.Name, &n.Href, &n.Order, &n.IsActive,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns nav items in display order. When activeOnly is set,
// inactive entries are skipped.
func (s *NavItemStore) List(activeOnly bool) ([]models.NavItem, error) {
	query := `SELECT ` + navItemColumns + ` FROM nav_items`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list nav items: %w", err)
	}
	defer rows.Close()

	var items []models.NavItem
	for rows.Next() {
		n, err := scanNavItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan nav item: %w", err)
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

// FindByID retrieves a nav item by ID. Returns nil if not found.
func (s *NavItemStore) FindByID(id uuid.UUID) (*models.NavItem, error) {
	row := s.db.QueryRow(`SELECT `+navItemColumns+` FROM nav_items WHERE id = $1`, id)
	n, err := scanNavItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find nav item by id: %w", err)
	}
	return n, nil
}

// Create inserts a nav item and returns it.
func (s *NavItemStore) Create(n *models.NavItem) (*models.NavItem, error) {
	row := s.db.QueryRow(`
		INSERT INTO nav_items (name, href, sort_order, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+navItemColumns,
		n.Name, n.Href, n.Order, n.IsActive,
	)
	result, err := scanNavItem(row)
	if err != nil {
		return nil, fmt.Errorf("create nav item: %w", err)
	}
	return result, nil
}

// Update modifies an existing nav item.
func (s *NavItemStore) Update(n *models.NavItem) error {
	_, err := s.db.Exec(`
		UPDATE nav_items SET
			name = $1, href = $2, sort_order = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`, n.Name, n.Href, n.Order, n.IsActive, n.ID)
	if err != nil {
		return fmt.Errorf("update nav item: %w", err)
	}
	return nil
}

// Delete removes a nav item by ID.
func (s *NavItemStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM nav_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete nav item: %w", err)
	}
	return nil
}
