// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sanitize

import (
	"strings"
	"testing"
)

func TestScrubText_RedactsEmails(t *testing.T) {
	got := ScrubText("contact Jane.Doe+test@Example.COM now", 0)
	if strings.Contains(got, "@") {
		t.Errorf("email survived scrubbing: %q", got)
	}
	if !strings.Contains(got, "[redacted-email]") {
		t.Errorf("expected redaction marker, got %q", got)
	}
}

func TestScrubText_RedactsLongNumbers(t *testing.T) {
	t.Run("six or more digits are masked", func(t *testing.T) {
		got := ScrubText("order 1234567 confirmed", 0)
		if !strings.Contains(got, "[redacted-number]") {
			t.Errorf("long number survived: %q", got)
		}
	})
	t.Run("short numbers pass through", func(t *testing.T) {
		got := ScrubText("room 42", 0)
		if got != "room 42" {
			t.Errorf("short number mangled: %q", got)
		}
	})
}

func TestScrubText_CollapsesWhitespaceAndTruncates(t *testing.T) {
	got := ScrubText("  a \n\t b   c  ", 0)
	if got != "a b c" {
		t.Errorf("whitespace not collapsed: %q", got)
	}

	long := strings.Repeat("x", 100)
	if got := ScrubText(long, 10); len([]rune(got)) != 10 {
		t.Errorf("expected 10 runes, got %d", len([]rune(got)))
	}
}

func TestScrubText_Empty(t *testing.T) {
	if got := ScrubText("", 64); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestSafeHostAndPath(t *testing.T) {
	if host := SafeHost("http://localhost:3000/app/page?q=1"); host != "localhost:3000" {
		t.Errorf("host = %q", host)
	}
	if path := SafePath("http://localhost:3000/app/page?q=1"); path != "/app/page" {
		t.Errorf("path = %q", path)
	}
	if path := SafePath("http://localhost:3000"); path != "/" {
		t.Errorf("empty path should default to /, got %q", path)
	}
	if host := SafeHost("://not a url"); host != "" {
		t.Errorf("unparseable url should yield empty host, got %q", host)
	}
}

func TestNormalizeCombo(t *testing.T) {
	cases := map[string]string{
		"Ctrl+Shift+K": "Control+Shift+K",
		"Meta+P":       "Meta+P",
		"Alt+F4":       "Alt+F4",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeCombo(in); got != want {
			t.Errorf("NormalizeCombo(%q) = %q, want %q", in, got, want)
		}
	}
}
