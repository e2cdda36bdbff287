// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package predictor implements a first-order Markov next-action predictor:
// a transition counter over ordered (from, to) node pairs. Counts here are
// kept separately from the graph's edge statistics on purpose — the graph
// records every linked transition, the predictor only workflow transitions.
package predictor

import (
	"sort"
)

type transitionKey struct {
	from string
	to   string
}

// Transition is one ranked successor candidate.
type Transition struct {
	To    string
	Count int
}

// Predictor counts observed transitions. Not goroutine-safe; the owning
// store serializes access.
type Predictor struct {
	counts   map[transitionKey]int
	outgoing map[string]int
	// successors keeps, per source node, the destination ids in
	// first-observed order. TopK ties break on this order, which makes
	// ranking deterministic across runs.
	successors map[string][]string
}

func New() *Predictor {
	return &Predictor{
		counts:     make(map[transitionKey]int),
		outgoing:   make(map[string]int),
		successors: make(map[string][]string),
	}
}

// Observe increments the transition counter for a -> b.
func (p *Predictor) Observe(a, b string) {
	key := transitionKey{from: a, to: b}
	if _, ok := p.counts[key]; !ok {
		p.successors[a] = append(p.successors[a], b)
	}
	p.counts[key]++
	p.outgoing[a]++
}

// TopK returns up to k successors of a, sorted by count descending. Ties
// keep first-observed order (stable sort over the insertion sequence).
func (p *Predictor) TopK(a string, k int) []Transition {
	succ := p.successors[a]
	if len(succ) == 0 || k <= 0 {
		return nil
	}
	out := make([]Transition, 0, len(succ))
	for _, b := range succ {
		out = append(out, Transition{To: b, Count: p.counts[transitionKey{from: a, to: b}]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// Outgoing returns the total observed transitions leaving a.
func (p *Predictor) Outgoing(a string) int {
	return p.outgoing[a]
}
