// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph is the deduplicated action-graph accumulator: node occurrence
// counts plus per-edge transition latency statistics. It has no session
// awareness and is not goroutine-safe on its own; the owning store serializes
// all access behind one lock.
package graph

import (
	"sort"

	"github.com/thirdlayer/actiongraph/datatypes"
)

type nodeMeta struct {
	label string
	kind  datatypes.ActionKind
}

type edgeKey struct {
	from string
	to   string
}

// EdgeStat accumulates one directed edge: occurrence count and the raw
// latency samples in milliseconds. Samples grow unbounded; sessions are
// bounded and the store is cleared between them, so this is acceptable.
type EdgeStat struct {
	Count   int
	Samples []int64
}

// State is the mutable graph. Insertion order of nodes and edges is retained
// so snapshots are deterministic.
type State struct {
	counts    map[string]int
	meta      map[string]nodeMeta
	nodeOrder []string

	edges     map[edgeKey]*EdgeStat
	edgeOrder []edgeKey
}

func New() *State {
	return &State{
		counts: make(map[string]int),
		meta:   make(map[string]nodeMeta),
		edges:  make(map[edgeKey]*EdgeStat),
	}
}

// TouchNode increments the occurrence count for id. The first observation
// fixes label and kind permanently: later observations never overwrite them,
// even if payload drift would produce a different label for the same id.
func (s *State) TouchNode(id, label string, kind datatypes.ActionKind) {
	s.counts[id]++
	if _, ok := s.meta[id]; !ok {
		s.meta[id] = nodeMeta{label: label, kind: kind}
		s.nodeOrder = append(s.nodeOrder, id)
	}
}

// AddEdge records one from->to transition with latency dt (ms). Negative
// deltas from out-of-order timestamps are clamped to 0, never dropped.
func (s *State) AddEdge(from, to string, dt int64) {
	if dt < 0 {
		dt = 0
	}
	key := edgeKey{from: from, to: to}
	st, ok := s.edges[key]
	if !ok {
		st = &EdgeStat{}
		s.edges[key] = st
		s.edgeOrder = append(s.edgeOrder, key)
	}
	st.Count++
	st.Samples = append(st.Samples, dt)
}

// NodeMeta returns the view of a single node, if present.
func (s *State) NodeMeta(id string) (datatypes.GraphNode, bool) {
	m, ok := s.meta[id]
	if !ok {
		return datatypes.GraphNode{}, false
	}
	return datatypes.GraphNode{ID: id, Label: m.label, Kind: m.kind, Count: s.counts[id]}, true
}

// Len returns the number of distinct nodes and edges.
func (s *State) Len() (nodes, edges int) {
	return len(s.counts), len(s.edges)
}

// Snapshot copies the graph into an immutable view. Median and average are
// truncated to whole milliseconds and are 0 when an edge has no samples.
func (s *State) Snapshot(nowMs int64) datatypes.GraphSnapshot {
	nodes := make([]datatypes.GraphNode, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		m := s.meta[id]
		nodes = append(nodes, datatypes.GraphNode{
			ID:    id,
			Label: m.label,
			Kind:  m.kind,
			Count: s.counts[id],
		})
	}

	edges := make([]datatypes.GraphEdge, 0, len(s.edgeOrder))
	for _, key := range s.edgeOrder {
		st := s.edges[key]
		edges = append(edges, datatypes.GraphEdge{
			From:     key.from,
			To:       key.to,
			Count:    st.Count,
			MedianMs: median(st.Samples),
			AvgMs:    mean(st.Samples),
		})
	}

	return datatypes.GraphSnapshot{
		V:           datatypes.GraphSnapshotVersion,
		GeneratedAt: nowMs,
		Nodes:       nodes,
		Edges:       edges,
	}
}

func median(samples []int64) int64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := append([]int64(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if n%2 == 1 {
		return sorted[n/2]
	}
	// Even count: mean of the two middle samples, truncated.
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(samples []int64) int64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, v := range samples {
		sum += v
	}
	return sum / int64(len(samples))
}
