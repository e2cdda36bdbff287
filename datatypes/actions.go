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

// ActionKind classifies a normalized action.
type ActionKind string

const (
	KindClick    ActionKind = "CLICK"
	KindShortcut ActionKind = "SHORTCUT"
	KindKeyboard ActionKind = "KEYBOARD"
	KindNav      ActionKind = "NAV"
	KindTab      ActionKind = "TAB"
	KindDOM      ActionKind = "DOM"
	KindState    ActionKind = "STATE"
	KindOther    ActionKind = "OTHER"
)

// IsWorkflowKind reports whether the kind represents a deliberate user step.
// Context kinds (DOM/TAB/KEYBOARD/OTHER) are still recorded as nodes, but they
// never become transition parents nor prediction context.
func IsWorkflowKind(k ActionKind) bool {
	switch k {
	case KindClick, KindShortcut, KindNav:
		return true
	}
	return false
}

// ClickPayload carries the element identity candidates for a pointer click,
// in decreasing order of stability.
type ClickPayload struct {
	Selector  string `json:"selector,omitempty"`
	Tag       string `json:"tag,omitempty"`
	AriaLabel string `json:"ariaLabel,omitempty"`
	TestID    string `json:"testid,omitempty"`
	ID        string `json:"id,omitempty"`
}

// ShortcutPayload holds a keyboard shortcut combo as sent by the capture
// script (e.g. "Ctrl+Shift+K").
type ShortcutPayload struct {
	Combo string `json:"combo"`
}

// KeyPayload holds a single key press.
type KeyPayload struct {
	Key string `json:"key"`
}

// NavPayload keeps the full destination URL so the action can be replayed.
type NavPayload struct {
	URL string `json:"url"`
}

// TabPayload describes a tab lifecycle event.
type TabPayload struct {
	URL string `json:"url"`
}

// DOMPayload summarizes a coarse DOM mutation sample.
type DOMPayload struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Attrs   int `json:"attrs"`
}

// StatePayload describes a UI state snapshot: the sorted, deduplicated set of
// visible semantic affordances (test ids) plus the signature derived from it.
type StatePayload struct {
	Reason  string   `json:"reason,omitempty"`
	TestIDs []string `json:"testids"`
	Sig     string   `json:"sig"`
	N       int      `json:"n"`
}

// ActionPayload is the tagged union of per-kind payload shapes. Exactly the
// variant matching Action.Kind is set; the rest stay nil.
type ActionPayload struct {
	Click    *ClickPayload    `json:"click,omitempty"`
	Shortcut *ShortcutPayload `json:"shortcut,omitempty"`
	Key      *KeyPayload      `json:"key,omitempty"`
	Nav      *NavPayload      `json:"nav,omitempty"`
	Tab      *TabPayload      `json:"tab,omitempty"`
	DOM      *DOMPayload      `json:"dom,omitempty"`
	State    *StatePayload    `json:"state,omitempty"`
}

// Action is a normalized event. ID is the merge key: two actions with equal
// IDs collapse onto the same graph node. Derived once from a RawEvent and
// never mutated afterwards.
type Action struct {
	ID      string        `json:"id"`
	TS      int64         `json:"ts"`
	Kind    ActionKind    `json:"kind"`
	URL     string        `json:"url"`
	Host    string        `json:"host"`
	Path    string        `json:"path"`
	Label   string        `json:"label"`
	Payload ActionPayload `json:"payload"`
}
