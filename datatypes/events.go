// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the wire and domain types shared by the recorder
// backend: raw driver events, normalized actions, graph views, and the
// request/response bodies of the HTTP API.
package datatypes

// EventType identifies a raw interaction event emitted by the recording driver.
type EventType string

const (
	EventPageReady     EventType = "PAGE_READY"
	EventPointerDown   EventType = "POINTER_DOWN"
	EventKeyShortcut   EventType = "KEY_SHORTCUT"
	EventKeyDown       EventType = "KEY_DOWN"
	EventURLChanged    EventType = "URL_CHANGED"
	EventNavCommitted  EventType = "NAV_COMMITTED"
	EventTabCreated    EventType = "TAB_CREATED"
	EventTabClosed     EventType = "TAB_CLOSED"
	EventDOMMutation   EventType = "DOM_MUTATION"
	EventStateSnapshot EventType = "STATE_SNAPSHOT"
)

// Event sources. "injected" means the in-page capture script; "backend"
// covers events synthesized by the driver itself (navigations, tab lifecycle).
const (
	SourceInjected = "injected"
	SourceBackend  = "backend"
)

// RawEvent is one interaction event exactly as produced by the driver.
// The payload is an open, type-dependent mapping; identity.Normalize projects
// it into a typed ActionPayload once, and nothing downstream touches it again.
type RawEvent struct {
	V       int            `json:"v"`
	TS      int64          `json:"ts" binding:"required"`
	Source  string         `json:"source"`
	Type    EventType      `json:"type" binding:"required"`
	URL     string         `json:"url"`
	Title   string         `json:"title,omitempty"`
	Payload map[string]any `json:"payload"`
}
