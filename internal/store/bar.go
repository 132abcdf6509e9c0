// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"finwire/internal/models"
)

// BarStore manages the 1-minute OHLC time series behind the top-movers
// ranking.
type BarStore struct {
	db *sql.DB
}

// NewBarStore returns a new BarStore.
func NewBarStore(db *sql.DB) *BarStore {
	return &BarStore{db: db}
}

// InsertBatch inserts all bars in one transaction. Used by the CSV
// importer: either every row lands or none does. Duplicate (symbol, ts)
// pairs overwrite the stored sample.
func (s *BarStore) InsertBatch(bars []models.Bar) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO bars (symbol, ts, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, ts) DO UPDATE SET
			open = EXCLUDED.open, high = EXCLUDED.high,
			low = EXCLUDED.low, close = EXCLUDED.close,
			volume = EXCLUDED.volume`)
	if err != nil {
		return 0, fmt.Errorf("prepare bar insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(b.Symbol, b.Ts, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return 0, fmt.Errorf("insert bar %s@%s: %w", b.Symbol, b.Ts, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bar insert: %w", err)
	}
	return len(bars), nil
}

// Mover is one row of the top-movers ranking.
type Mover struct {
	Symbol        string  `json:"symbol"`
	LatestClose   float64 `json:"latest_close"`
	BaselineClose float64 `json:"baseline_close"`
	ChangePct     float64 `json:"change_pct"`
}

// TopMovers ranks symbols by percent change over the bars newer than
// since, descending, capped at limit.
//
// The baseline is the OLDEST sample inside the window, not the bar
// immediately before the latest one. The source system computed it this
// way (descending sort, then taking the trailing element per group), and
// that behavior is kept rather than corrected.
func (s *BarStore) TopMovers(since time.Time, limit int) ([]Mover, error) {
	rows, err := s.db.Query(`
		SELECT symbol, latest_close, baseline_close,
		       (latest_close - baseline_close) / baseline_close * 100 AS change_pct
		FROM (
			SELECT symbol,
			       (array_agg(close ORDER BY ts DESC))[1] AS latest_close,
			       (array_agg(close ORDER BY ts ASC))[1]  AS baseline_close
			FROM bars
			WHERE ts > $1
			GROUP BY symbol
		) agg
		WHERE baseline_close <> 0
		ORDER BY change_pct DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top movers: %w", err)
	}
	defer rows.Close()

	var movers []Mover
	for rows.Next() {
		var m Mover
		if err := rows.Scan(&m.Symbol, &m.LatestClose, &m.BaselineClose, &m.ChangePct); err != nil {
			return nil, fmt.Errorf("scan mover: %w", err)
		}
		movers = append(movers, m)
	}
	return movers, rows.Err()
}

// CountSince returns the number of bars newer than since. Used by the
// admin dashboard stats.
func (s *BarStore) CountSince(since time.Time) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM bars WHERE ts > $1`, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bars: %w", err)
	}
	return count, nil
}
