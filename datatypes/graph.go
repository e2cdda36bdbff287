// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// GraphSnapshotVersion is the format version stamped on every snapshot.
const GraphSnapshotVersion = 1

// GraphNode is the read-only view of one merged action node.
type GraphNode struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Kind  ActionKind `json:"kind"`
	Count int        `json:"count"`
}

// GraphEdge is the read-only view of one directed transition, with latency
// statistics truncated to whole milliseconds.
type GraphEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Count    int    `json:"count"`
	MedianMs int64  `json:"median_ms"`
	AvgMs    int64  `json:"avg_ms"`
}

// GraphSnapshot is an immutable copy of the whole graph at a point in time.
// Nodes and edges appear in first-insertion order, so two snapshots taken
// with no intervening mutation are structurally equal except GeneratedAt.
type GraphSnapshot struct {
	V           int         `json:"v"`
	GeneratedAt int64       `json:"generated_at"`
	Nodes       []GraphNode `json:"nodes"`
	Edges       []GraphEdge `json:"edges"`
}
