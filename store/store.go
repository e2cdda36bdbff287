// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store owns the recorder's mutable state: event/action buffers, the
// action graph, the predictor, and the per-session linking context.
//
// # Linking policy
//
// Every action touches its node. STATE snapshots resolve the single pending
// post-state link (pairing a workflow action with the state it produced) and
// become the parent for the next workflow action. Workflow actions (CLICK,
// SHORTCUT, NAV) edge from the last STATE when one exists — the most recent
// observed screen is the authoritative parent, which keeps "go back" flows
// from mis-linking to a stale button — and fall back to the last workflow
// action before any state has been seen. Context kinds (DOM, TAB, KEYBOARD,
// OTHER) only touch their node.
//
// # Thread Safety
//
// One mutex covers node/edge mutation and every context-pointer update as a
// single atomic unit per action; reads copy a consistent view under the same
// lock and return immediately.
package store

import (
	"sync"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/graph"
	"github.com/thirdlayer/actiongraph/memory"
	"github.com/thirdlayer/actiongraph/predictor"
)

// contextPointer is one "last seen" marker. A zero ID means unset.
type contextPointer struct {
	ID string
	TS int64
}

func (c *contextPointer) set(id string, ts int64) {
	c.ID = id
	c.TS = ts
}

func (c *contextPointer) clear() {
	c.ID = ""
	c.TS = 0
}

// AppStore aggregates all recorder state behind one lock.
type AppStore struct {
	mu        sync.Mutex
	maxEvents int

	recording bool
	sessionID string

	events  []datatypes.RawEvent
	actions []datatypes.Action

	graph     *graph.State
	predictor *predictor.Predictor
	memory    *memory.Store

	// Session context: reset on session start/stop so no edge ever spans
	// two recording sessions.
	lastAction   contextPointer
	lastWorkflow contextPointer
	lastState    contextPointer
	// pending is the single deferred ACTION -> STATE link awaiting the next
	// state snapshot. A new workflow action overwrites an unresolved slot;
	// each such discard is counted in unresolvedPending.
	pending           contextPointer
	unresolvedPending uint64
}

// New creates an empty store. maxEvents bounds the raw event and action
// buffers (oldest-first eviction); the graph itself is never evicted.
func New(maxEvents int) *AppStore {
	return &AppStore{
		maxEvents: maxEvents,
		graph:     graph.New(),
		predictor: predictor.New(),
		memory:    memory.NewStore(),
	}
}

// SetRecording flips the session lifecycle state.
func (s *AppStore) SetRecording(on bool, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = on
	s.sessionID = sessionID
}

// Recording returns the lifecycle state and current session id.
func (s *AppStore) Recording() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording, s.sessionID
}

// Memory exposes the hint store (it carries its own lock).
func (s *AppStore) Memory() *memory.Store {
	return s.memory
}

// AppendEvent records a raw event, evicting oldest entries past maxEvents.
func (s *AppStore) AppendEvent(ev datatypes.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if s.maxEvents > 0 && len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// AppendAction runs the session linker for one normalized action: node
// touch, edge recording, predictor observation, and context updates happen
// atomically.
func (s *AppStore) AppendAction(act datatypes.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append(s.actions, act)
	if s.maxEvents > 0 && len(s.actions) > s.maxEvents {
		s.actions = s.actions[len(s.actions)-s.maxEvents:]
	}

	// Nodes are always tracked, context kinds included.
	s.graph.TouchNode(act.ID, act.Label, act.Kind)

	if act.Kind == datatypes.KindState {
		// Only the first snapshot at or after the pending action resolves
		// the deferred link; an earlier (late-arriving) snapshot is ignored
		// for resolution but still becomes the last state.
		if s.pending.ID != "" && act.TS >= s.pending.TS {
			s.graph.AddEdge(s.pending.ID, act.ID, act.TS-s.pending.TS)
			s.pending.clear()
		}
		s.lastState.set(act.ID, act.TS)
		s.lastAction.set(act.ID, act.TS)
		return
	}

	if datatypes.IsWorkflowKind(act.Kind) {
		if s.lastState.ID != "" {
			s.graph.AddEdge(s.lastState.ID, act.ID, act.TS-s.lastState.TS)
			s.predictor.Observe(s.lastState.ID, act.ID)
		} else if s.lastWorkflow.ID != "" {
			// No snapshots yet this session.
			s.graph.AddEdge(s.lastWorkflow.ID, act.ID, act.TS-s.lastWorkflow.TS)
			s.predictor.Observe(s.lastWorkflow.ID, act.ID)
		}

		s.lastWorkflow.set(act.ID, act.TS)

		if s.pending.ID != "" {
			// The previous workflow action never saw its post-state.
			s.unresolvedPending++
		}
		s.pending.set(act.ID, act.TS)
	}

	s.lastAction.set(act.ID, act.TS)
}

// SnapshotGraph copies the graph into an immutable view stamped with nowMs.
func (s *AppStore) SnapshotGraph(nowMs int64) datatypes.GraphSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Snapshot(nowMs)
}

// NodeMeta returns the view of a single node.
func (s *AppStore) NodeMeta(id string) (datatypes.GraphNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.NodeMeta(id)
}

// GraphLen returns distinct node and edge counts (for gauges).
func (s *AppStore) GraphLen() (nodes, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Len()
}

// LastActionID returns the raw "last anything" pointer.
func (s *AppStore) LastActionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAction.ID
}

// LastWorkflowActionID returns the last deliberate user step.
func (s *AppStore) LastWorkflowActionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWorkflow.ID
}

// LastStateID returns the last observed UI state snapshot.
func (s *AppStore) LastStateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState.ID
}

// UnresolvedPendingLinks counts workflow actions whose deferred post-state
// link was discarded by a newer workflow action.
func (s *AppStore) UnresolvedPendingLinks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unresolvedPending
}

// PredictNext ranks the likely successors of the current context node.
// Context prefers the last state snapshot and falls back to the last
// workflow action; no context yields an empty list, which is not an error.
func (s *AppStore) PredictNext(k int) (contextID string, contextNode *datatypes.GraphNode, predictions []datatypes.GraphNode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contextID = s.lastState.ID
	if contextID == "" {
		contextID = s.lastWorkflow.ID
	}
	if contextID == "" {
		return "", nil, nil
	}

	if meta, ok := s.graph.NodeMeta(contextID); ok {
		contextNode = &meta
	}

	for _, tr := range s.predictor.TopK(contextID, k) {
		node := datatypes.GraphNode{ID: tr.To, Label: tr.To, Kind: datatypes.KindOther, Count: tr.Count}
		if meta, ok := s.graph.NodeMeta(tr.To); ok {
			node.Label = meta.Label
			node.Kind = meta.Kind
		}
		// Count carries the transition frequency, not the node count.
		node.Count = tr.Count
		predictions = append(predictions, node)
	}
	return contextID, contextNode, predictions
}

// FindAction scans the recent action buffer, newest first.
func (s *AppStore) FindAction(id string) (datatypes.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.actions) - 1; i >= 0; i-- {
		if s.actions[i].ID == id {
			return s.actions[i], true
		}
	}
	return datatypes.Action{}, false
}

// EventCount and ActionCount report buffer sizes.
func (s *AppStore) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *AppStore) ActionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// ResetContext clears the per-session pointers so edges never cross
// sessions. Called at session start (before the driver emits anything) and
// at stop/clear.
func (s *AppStore) ResetContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetContextLocked()
}

func (s *AppStore) resetContextLocked() {
	s.lastAction.clear()
	s.lastWorkflow.clear()
	s.lastState.clear()
	s.pending.clear()
}

// Clear wipes everything: buffers, graph, predictor, memory, and context.
func (s *AppStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.actions = nil
	s.graph = graph.New()
	s.predictor = predictor.New()
	s.memory.Clear()
	s.unresolvedPending = 0
	s.resetContextLocked()
}
