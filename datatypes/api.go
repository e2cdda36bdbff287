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

// StartSessionRequest asks the backend to open a recording session on a URL.
type StartSessionRequest struct {
	URL string `json:"url" binding:"required"`
}

type StartSessionResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"session_id,omitempty"`
}

type StopSessionResponse struct {
	OK bool `json:"ok"`
}

// StateResponse reports the recorder's current lifecycle state.
type StateResponse struct {
	Recording    bool     `json:"recording"`
	SessionID    string   `json:"session_id"`
	AllowedHosts []string `json:"allowed_hosts"`
}

// PredictResponse carries the frequency-ranked next-action prediction.
// ContextNode is the node used as prediction context (workflow/state only);
// an empty context with OK=true means "nothing observed yet", not an error.
type PredictResponse struct {
	OK          bool        `json:"ok"`
	ContextNode string      `json:"context_node"`
	Context     *GraphNode  `json:"context,omitempty"`
	Predictions []GraphNode `json:"predictions"`
}

// ExecuteRequest asks the driver to replay a previously recorded action.
type ExecuteRequest struct {
	ActionID string `json:"action_id" binding:"required"`
}

type ExecuteResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// MemoryItem is one searchable procedure hint.
type MemoryItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	UpdatedAt int64    `json:"updated_at"`
	Tags      []string `json:"tags"`
}

type MemorySearchResponse struct {
	OK      bool         `json:"ok"`
	Results []MemoryItem `json:"results"`
}

// SessionRef summarizes one archived session snapshot.
type SessionRef struct {
	SessionID   string `json:"session_id"`
	GeneratedAt int64  `json:"generated_at"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
}
