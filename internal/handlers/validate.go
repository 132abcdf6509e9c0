package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for content and SEO fields.
const (
	maxTitleLen   = 300
	maxMetaTitle  = 60
	maxMetaDesc   = 160
	maxExcerptLen = 1_000
	maxContentLen = 200_000
)

var (
	emailPattern        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	hexColorPattern     = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	instrumentIDPattern = regexp.MustCompile(`^[A-Z0-9.\-]+\.[A-Z]+$`)
)

// validatePost checks post inputs and returns the first error found.
func validatePost(title, content, excerpt string) string {
	if strings.TrimSpace(title) == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title is too long (max 300 characters)"
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "content is too long (max 200,000 characters)"
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "excerpt is too long (max 1,000 characters)"
	}
	return ""
}

// validateSEO checks SEO metadata limits: metaTitle ≤ 60 runes,
// metaDescription ≤ 160 runes.
func validateSEO(metaTitle, metaDesc string) string {
	if utf8.RuneCountInString(metaTitle) > maxMetaTitle {
		return "seo.meta_title is too long (max 60 characters)"
	}
	if utf8.RuneCountInString(metaDesc) > maxMetaDesc {
		return "seo.meta_description is too long (max 160 characters)"
	}
	return ""
}

// validEmail reports whether s looks like an email address.
func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// validHexColor reports whether s is a #RRGGBB hex color.
func validHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// validInstrumentID reports whether s follows "<SYMBOL>.<EXCHANGE>".
func validInstrumentID(s string) bool {
	return instrumentIDPattern.MatchString(s)
}

// validWeight reports whether an index member weight is within [0,100].
func validWeight(w float64) bool {
	return w >= 0 && w <= 100
}
