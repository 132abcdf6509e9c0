// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"testing"
)

func TestValidatePost(t *testing.T) {
	if msg := validatePost("Title", "content", "excerpt"); msg != "" {
		t.Errorf("valid post rejected: %s", msg)
	}
	if msg := validatePost("", "content", ""); msg == "" {
		t.Error("empty title accepted")
	}
	if msg := validatePost("   ", "content", ""); msg == "" {
		t.Error("whitespace title accepted")
	}
	if msg := validatePost(strings.Repeat("x", 301), "c", ""); msg == "" {
		t.Error("overlong title accepted")
	}
	if msg := validatePost("ok", strings.Repeat("x", 200_001), ""); msg == "" {
		t.Error("overlong content accepted")
	}
	if msg := validatePost("ok", "c", strings.Repeat("x", 1_001)); msg == "" {
		t.Error("overlong excerpt accepted")
	}
}

func TestValidateSEO(t *testing.T) {
	if msg := validateSEO(strings.Repeat("x", 60), strings.Repeat("y", 160)); msg != "" {
		t.Errorf("at-limit SEO rejected: %s", msg)
	}
	if msg := validateSEO(strings.Repeat("x", 61), ""); msg == "" {
		t.Error("overlong meta title accepted")
	}
	if msg := validateSEO("", strings.Repeat("y", 161)); msg == "" {
		t.Error("overlong meta description accepted")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.com", "x+tag@sub.domain.io"}
	invalid := []string{"", "plain", "a@b", "@example.com", "a b@c.com", "a@b c.com"}

	for _, e := range valid {
		if !validEmail(e) {
			t.Errorf("validEmail(%q) = false, want true", e)
		}
	}
	for _, e := range invalid {
		if validEmail(e) {
			t.Errorf("validEmail(%q) = true, want false", e)
		}
	}
}

func TestValidHexColor(t *testing.T) {
	if !validHexColor("#3B82F6") || !validHexColor("#ffffff") {
		t.Error("valid colors rejected")
	}
	for _, c := range []string{"", "3B82F6", "#fff", "#GGGGGG", "#3B82F6A"} {
		if validHexColor(c) {
			t.Errorf("validHexColor(%q) = true, want false", c)
		}
	}
}

func TestValidInstrumentID(t *testing.T) {
	valid := []string{"AAPL.NASDAQ", "BRK-B.NYSE", "VOD.L", "005930.KRX"}
	invalid := []string{"", "AAPL", "aapl.nasdaq", "AAPL.", ".NASDAQ", "AAPL NASDAQ"}

	for _, id := range valid {
		if !validInstrumentID(id) {
			t.Errorf("validInstrumentID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if validInstrumentID(id) {
			t.Errorf("validInstrumentID(%q) = true, want false", id)
		}
	}
}

func TestValidWeight(t *testing.T) {
	for _, w := range []float64{0, 0.5, 50, 100} {
		if !validWeight(w) {
			t.Errorf("validWeight(%v) = false, want true", w)
		}
	}
	for _, w := range []float64{-0.1, 100.1, 1000} {
		if validWeight(w) {
			t.Errorf("validWeight(%v) = true, want false", w)
		}
	}
}
