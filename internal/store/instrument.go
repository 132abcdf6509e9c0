// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"finwire/internal/models"
)

// InstrumentStore manages instrument reference data, keyed by the
// "<SYMBOL>.<EXCHANGE>" identifier.
type InstrumentStore struct {
	db *sql.DB
}

// NewInstrumentStore returns a new InstrumentStore.
func NewInstrumentStore(db *sql.DB) *InstrumentStore {
	return &InstrumentStore{db: db}
}

const instrumentColumns = `id, symbol, exchange, display_symbol, name, type, sector,
	tick_size, market_cap, isin, cusip, sedol, created_at, updated_at`

// scanInstrument scans a row into an Instrument struct.
func scanInstrument(scanner interface{ Scan(...any) error }) (*models.Instrument, error) {
	var i models.Instrument
	err := scanner.Scan(
		&i.ID, &i.Symbol, &i.Exchange, &i.DisplaySymbol, &i.Name, &i.Type,
		&i.Sector, &i.TickSize, &i.MarketCap, &i.ISIN, &i.CUSIP, &i.SEDOL,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// InstrumentFilter narrows List results.
type InstrumentFilter struct {
	Search   string
	Exchange string
	Sector   string
	Page     int // 1-based
	Limit    int
}

// List returns a page of instruments matching the filter plus the total
// match count, ordered by identifier.
func (s *InstrumentStore) List(f InstrumentFilter) ([]models.Instrument, int, error) {
	where := "TRUE"
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where += fmt.Sprintf(" AND (symbol ILIKE %s OR name ILIKE %s)", p, p)
	}
	if f.Exchange != "" {
		where += " AND exchange = " + arg(f.Exchange)
	}
	if f.Sector != "" {
		where += " AND sector = " + arg(f.Sector)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM instruments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count instruments: %w", err)
	}

	page, limit := normalizePage(f.Page, f.Limit)
	query := `SELECT ` + instrumentColumns + ` FROM instruments WHERE ` + where +
		` ORDER BY id LIMIT ` + arg(limit) + ` OFFSET ` + arg((page-1)*limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list instruments: %w", err)
	}
	defer rows.Close()

	var items []models.Instrument
	for rows.Next() {
		i, err := scanInstrument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan instrument: %w", err)
		}
		items = append(items, *i)
	}
	return items, total, rows.Err()
}

// FindByID retrieves an instrument by its "<SYMBOL>.<EXCHANGE>" identifier.
// Returns nil if not found.
func (s *InstrumentStore) FindByID(id string) (*models.Instrument, error) {
	row := s.db.QueryRow(`SELECT `+instrumentColumns+` FROM instruments WHERE id = $1`, id)
	i, err := scanInstrument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find instrument by id: %w", err)
	}
	return i, nil
}

// Upsert inserts an instrument or updates its reference data in place.
func (s *InstrumentStore) Upsert(i *models.Instrument) (*models.Instrument, error) {
	row := s.db.QueryRow(`
		INSERT INTO instruments (id, symbol, exchange, display_symbol, name, type,
		                         sector, tick_size, market_cap, isin, cusip, sedol)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			display_symbol = EXCLUDED.display_symbol, name = EXCLUDED.name,
			type = EXCLUDED.type, sector = EXCLUDED.sector,
			tick_size = EXCLUDED.tick_size, market_cap = EXCLUDED.market_cap,
			isin = EXCLUDED.isin, cusip = EXCLUDED.cusip, sedol = EXCLUDED.sedol,
			updated_at = NOW()
		RETURNING `+instrumentColumns,
		i.ID, i.Symbol, i.Exchange, i.DisplaySymbol, i.Name, i.Type,
		i.Sector, i.TickSize, i.MarketCap, i.ISIN, i.CUSIP, i.SEDOL,
	)
	result, err := scanInstrument(row)
	if err != nil {
		return nil, fmt.Errorf("upsert instrument: %w", err)
	}
	return result, nil
}

// Delete removes an instrument by identifier.
func (s *InstrumentStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM instruments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete instrument: %w", err)
	}
	return nil
}
