// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"finwire/internal/models"
	"finwire/internal/store"
)

// barColumns is the exact header set a price-bar CSV must carry, in any order.
var barColumns = []string{"symbol", "ts", "open", "high", "low", "close", "volume"}

// BarImporter parses OHLC price-bar CSV uploads and bulk-inserts them.
type BarImporter struct {
	bars *store.BarStore
}

// NewBarImporter returns an importer writing through the given store.
func NewBarImporter(bars *store.BarStore) *BarImporter {
	return &BarImporter{bars: bars}
}

// Import parses and validates the CSV, then inserts every row in one
// transaction. Any row error aborts the whole batch with zero inserts.
func (imp *BarImporter) Import(r io.Reader) (*Result, error) {
	bars, errs, err := ParseBars(r)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return capErrors(errs), nil
	}

	inserted, err := imp.bars.InsertBatch(bars)
	if err != nil {
		return nil, err
	}
	return &Result{Inserted: inserted}, nil
}

// ParseBars reads the CSV and validates every row, collecting all
// row-level errors.
func ParseBars(r io.Reader) ([]models.Bar, []RowError, error) {
	rows, err := readRows(r, barColumns)
	if err != nil {
		return nil, nil, err
	}

	var bars []models.Bar
	var errs []RowError

	for i, row := range rows {
		line := i + 2
		b, rowErrs := parseBarRow(row, line)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		bars = append(bars, b)
	}
	return bars, errs, nil
}

// parseBarRow validates a single row and builds the model.
func parseBarRow(row map[string]string, line int) (models.Bar, []RowError) {
	var errs []RowError
	fail := func(format string, args ...any) {
		errs = append(errs, RowError{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	b := models.Bar{Symbol: strings.TrimSpace(row["symbol"])}
	if b.Symbol == "" {
		fail("symbol is required")
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row["ts"]))
	if err != nil {
		fail("ts must be an RFC 3339 timestamp, got %q", row["ts"])
	} else {
		b.Ts = ts
	}

	price := func(field string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[field]), 64)
		if err != nil {
			fail("%s must be a number, got %q", field, row[field])
			return 0
		}
		if v < 0 {
			fail("%s must not be negative", field)
		}
		return v
	}
	b.Open = price("open")
	b.High = price("high")
	b.Low = price("low")
	b.Close = price("close")

	if len(errs) == 0 {
		if b.High < b.Low {
			fail("high %v is below low %v", b.High, b.Low)
		} else {
			if b.Open < b.Low || b.Open > b.High {
				fail("open %v is outside [low %v, high %v]", b.Open, b.Low, b.High)
			}
			if b.Close < b.Low || b.Close > b.High {
				fail("close %v is outside [low %v, high %v]", b.Close, b.Low, b.High)
			}
		}
	}

	vol := strings.TrimSpace(row["volume"])
	if vol == "" {
		vol = "0"
	}
	volume, err := strconv.ParseInt(vol, 10, 64)
	if err != nil {
		fail("volume must be an integer, got %q", row["volume"])
	} else if volume < 0 {
		fail("volume must not be negative")
	} else {
		b.Volume = volume
	}

	return b, errs
}
