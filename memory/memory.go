// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory is a minimal searchable store for procedure hints discovered
// during recording. Search is plain case-insensitive substring scoring; this
// is deliberately simple and not part of the graph core.
package memory

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thirdlayer/actiongraph/datatypes"
)

const (
	titleMaxLen = 120
	textMaxLen  = 2000
)

var whitespaceRe = regexp.MustCompile(`\s+`)

func compactWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Store holds hint items keyed by id. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	items map[string]datatypes.MemoryItem
}

func NewStore() *Store {
	return &Store{items: make(map[string]datatypes.MemoryItem)}
}

// Upsert inserts or replaces a hint. Title and text are whitespace-compacted
// and truncated.
func (s *Store) Upsert(id, title, text string, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = datatypes.MemoryItem{
		ID:        id,
		Title:     truncate(compactWhitespace(title), titleMaxLen),
		Text:      truncate(compactWhitespace(text), textMaxLen),
		UpdatedAt: time.Now().UnixMilli(),
		Tags:      append([]string(nil), tags...),
	}
}

// Search scores items by occurrence count of the query substring across
// title and text, descending. An empty query returns nothing.
func (s *Store) Search(q string, limit int) []datatypes.MemoryItem {
	qn := strings.ToLower(strings.TrimSpace(q))
	if qn == "" || limit <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		score int
		item  datatypes.MemoryItem
	}
	var hits []scored
	for _, it := range s.items {
		hay := strings.ToLower(it.Title + " " + it.Text)
		if score := strings.Count(hay, qn); score > 0 {
			hits = append(hits, scored{score: score, item: it})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].item.ID < hits[j].item.ID
	})

	out := make([]datatypes.MemoryItem, 0, min(limit, len(hits)))
	for _, h := range hits[:min(limit, len(hits))] {
		out = append(out, h.item)
	}
	return out
}

// Clear drops all items.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]datatypes.MemoryItem)
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen])
	}
	return s
}
