// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package importer parses uploaded CSV files and bulk-inserts the rows.
// Both importers are all-or-nothing: every row is validated first, and a
// single bad row aborts the whole batch. Reported row errors are capped
// at ErrorCap; TotalErrors carries the full count.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrorCap bounds how many row errors a response carries.
const ErrorCap = 10

// RowError describes a validation failure on one CSV row.
// Line is 1-based and counts the header row.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Result summarizes an import run. When TotalErrors > 0, Inserted is
// always zero and Errors holds at most ErrorCap entries.
type Result struct {
	Inserted    int        `json:"inserted"`
	Errors      []RowError `json:"errors,omitempty"`
	TotalErrors int        `json:"total_errors"`
}

// FormatError marks a structural problem with the upload itself: a bad
// header set or malformed CSV. Handlers turn these into 400 responses.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string {
	return e.msg
}

// formatErrf builds a FormatError.
func formatErrf(format string, args ...any) error {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

// capErrors builds a failed Result from the full error list.
func capErrors(errs []RowError) *Result {
	res := &Result{TotalErrors: len(errs)}
	if len(errs) > ErrorCap {
		errs = errs[:ErrorCap]
	}
	res.Errors = errs
	return res
}

// readRows parses CSV content and checks the header row against the
// expected column set (order-independent, exact match). It returns a
// per-row field map keyed by column name.
func readRows(r io.Reader, expected []string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, formatErrf("empty file")
	}
	if err != nil {
		return nil, formatErrf("read header: %v", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkHeader(header, expected); err != nil {
		return nil, err
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErrf("read row: %v", err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// checkHeader verifies the header columns form exactly the expected set.
func checkHeader(header, expected []string) error {
	got := append([]string(nil), header...)
	want := append([]string(nil), expected...)
	sort.Strings(got)
	sort.Strings(want)

	if len(got) != len(want) {
		return formatErrf("expected columns %s, got %s",
			strings.Join(expected, ","), strings.Join(header, ","))
	}
	for i := range got {
		if got[i] != want[i] {
			return formatErrf("expected columns %s, got %s",
				strings.Join(expected, ","), strings.Join(header, ","))
		}
	}
	return nil
}
