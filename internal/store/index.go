// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"finwire/internal/models"
)

// IndexStore manages market indices and their weighted members.
type IndexStore struct {
	db *sql.DB
}

// NewIndexStore returns a new IndexStore.
func NewIndexStore(db *sql.DB) *IndexStore {
	return &IndexStore{db: db}
}

// List returns all indices with their members, ordered by code.
func (s *IndexStore) List() ([]models.Index, error) {
	rows, err := s.db.Query(`
		SELECT code, name, exchange, created_at, updated_at
		FROM indices ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}
	defer rows.Close()

	var items []models.Index
	for rows.Next() {
		var idx models.Index
		if err := rows.Scan(&idx.Code, &idx.Name, &idx.Exchange, &idx.CreatedAt, &idx.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		items = append(items, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		members, err := s.members(items[i].Code)
		if err != nil {
			return nil, err
		}
		items[i].Members = members
	}
	return items, nil
}

// FindByCode retrieves an index with its members. Returns nil if not found.
func (s *IndexStore) FindByCode(code string) (*models.Index, error) {
	var idx models.Index
	err := s.db.QueryRow(`
		SELECT code, name, exchange, created_at, updated_at
		FROM indices WHERE code = $1
	`, code).Scan(&idx.Code, &idx.Name, &idx.Exchange, &idx.CreatedAt, &idx.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find index by code: %w", err)
	}

	members, err := s.members(code)
	if err != nil {
		return nil, err
	}
	idx.Members = members
	return &idx, nil
}

// members loads the weighted member list for an index.
func (s *IndexStore) members(code string) ([]models.IndexMember, error) {
	rows, err := s.db.Query(`
		SELECT instrument_id, weight FROM index_members
		WHERE index_code = $1 ORDER BY weight DESC, instrument_id
	`, code)
	if err != nil {
		return nil, fmt.Errorf("list index members: %w", err)
	}
	defer rows.Close()

	var members []models.IndexMember
	for rows.Next() {
		var m models.IndexMember
		if err := rows.Scan(&m.InstrumentID, &m.Weight); err != nil {
			return nil, fmt.Errorf("scan index member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CodeExists reports whether an index with the given code already exists.
func (s *IndexStore) CodeExists(code string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM indices WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("index code exists: %w", err)
	}
	return exists, nil
}

// Create inserts an index and its members in one transaction.
func (s *IndexStore) Create(idx *models.Index) (*models.Index, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO indices (code, name, exchange)
		VALUES ($1, $2, $3)
		RETURNING code, name, exchange, created_at, updated_at
	`, idx.Code, idx.Name, idx.Exchange).Scan(
		&idx.Code, &idx.Name, &idx.Exchange, &idx.CreatedAt, &idx.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	if err := replaceMembersTx(tx, idx.Code, idx.Members); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create index: %w", err)
	}
	return idx, nil
}

// Update modifies an index and replaces its member list in one transaction.
func (s *IndexStore) Update(idx *models.Index) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE indices SET name = $1, exchange = $2, updated_at = NOW() WHERE code = $3
	`, idx.Name, idx.Exchange, idx.Code); err != nil {
		return fmt.Errorf("update index: %w", err)
	}

	if err := replaceMembersTx(tx, idx.Code, idx.Members); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes an index by code. Members cascade.
func (s *IndexStore) Delete(code string) error {
	_, err := s.db.Exec(`DELETE FROM indices WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// replaceMembersTx replaces all members of an index inside a transaction.
func replaceMembersTx(tx *sql.Tx, code string, members []models.IndexMember) error {
	if _, err := tx.Exec(`DELETE FROM index_members WHERE index_code = $1`, code); err != nil {
		return fmt.Errorf("clear index members: %w", err)
	}
	for _, m := range members {
		if _, err := tx.Exec(`
			INSERT INTO index_members (index_code, instrument_id, weight)
			VALUES ($1, $2, $3)
		`, code, m.InstrumentID, m.Weight); err != nil {
			return fmt.Errorf("insert index member %s: %w", m.InstrumentID, err)
		}
	}
	return nil
}
