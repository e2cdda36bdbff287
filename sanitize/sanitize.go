// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sanitize provides the text redaction and URL helpers used when
// deriving action identities and labels. ScrubText is deliberately
// conservative: it masks emails and long digit runs, collapses whitespace,
// and truncates. Identity derivation depends on it being deterministic.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	emailRe      = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	longNumRe    = regexp.MustCompile(`\b\d{6,}\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// DefaultMaxLen is the truncation applied when callers pass maxLen <= 0.
const DefaultMaxLen = 64

// ScrubText redacts emails and long numbers, collapses whitespace, and
// truncates to maxLen runes.
func ScrubText(s string, maxLen int) string {
	if s == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	s = strings.TrimSpace(s)
	s = emailRe.ReplaceAllString(s, "[redacted-email]")
	s = longNumRe.ReplaceAllString(s, "[redacted-number]")
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen])
	}
	return s
}

// SafeHost extracts the host (with port, if any) from a URL, or "" when the
// URL does not parse.
func SafeHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// SafePath extracts the path from a URL, defaulting to "/".
func SafePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// NormalizeCombo rewrites the capture script's modifier names into the form
// the driver expects ("Ctrl+Shift+K" -> "Control+Shift+K").
func NormalizeCombo(combo string) string {
	if combo == "" {
		return ""
	}
	parts := strings.Split(combo, "+")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "Ctrl" {
			out = append(out, "Control")
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "+")
}
