// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package identity derives a stable node id and a human-readable label for
// every raw driver event, so repeated occurrences of the "same" action merge
// onto one graph node.
//
// # Identity rules
//
// CLICK ids prefer semantic keys over CSS selectors (testid > ariaLabel >
// id > selector): semantic identifiers survive DOM re-renders, selectors do
// not. STATE ids hash the sorted, deduplicated set of visible test ids so
// identical affordance sets always collapse regardless of capture order.
// Labels are purely cosmetic and never feed into ids.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/sanitize"
)

// Scrub budgets per id component.
const (
	clickKeyMaxLen = 160
	comboMaxLen    = 80
	keyMaxLen      = 40
	stateSigMaxLen = 500
	stateDigestLen = 10
)

// Normalize projects a raw driver event into a normalized Action: classify
// the kind, build the typed payload, then derive the merge id and the label.
// Unknown event types degrade to OTHER; they are still tracked as nodes.
func Normalize(ev datatypes.RawEvent) datatypes.Action {
	rawURL := ev.URL
	if rawURL == "" {
		rawURL = payloadString(ev.Payload, "url")
	}
	if rawURL == "" {
		rawURL = payloadString(ev.Payload, "to")
	}
	host := sanitize.SafeHost(rawURL)
	path := sanitize.SafePath(rawURL)

	kind, payload := classify(ev, rawURL)

	return datatypes.Action{
		ID:      ActionID(kind, host, path, payload),
		TS:      ev.TS,
		Kind:    kind,
		URL:     rawURL,
		Host:    host,
		Path:    path,
		Label:   ActionLabel(kind, host, path, payload),
		Payload: payload,
	}
}

func classify(ev datatypes.RawEvent, rawURL string) (datatypes.ActionKind, datatypes.ActionPayload) {
	switch ev.Type {
	case datatypes.EventPointerDown:
		return datatypes.KindClick, datatypes.ActionPayload{Click: &datatypes.ClickPayload{
			Selector:  payloadString(ev.Payload, "selector"),
			Tag:       payloadString(ev.Payload, "tag"),
			AriaLabel: payloadString(ev.Payload, "ariaLabel"),
			TestID:    payloadString(ev.Payload, "testid"),
			ID:        payloadString(ev.Payload, "id"),
		}}
	case datatypes.EventKeyShortcut:
		return datatypes.KindShortcut, datatypes.ActionPayload{Shortcut: &datatypes.ShortcutPayload{
			Combo: payloadString(ev.Payload, "combo"),
		}}
	case datatypes.EventKeyDown:
		return datatypes.KindKeyboard, datatypes.ActionPayload{Key: &datatypes.KeyPayload{
			Key: payloadString(ev.Payload, "key"),
		}}
	case datatypes.EventNavCommitted, datatypes.EventURLChanged:
		return datatypes.KindNav, datatypes.ActionPayload{Nav: &datatypes.NavPayload{URL: rawURL}}
	case datatypes.EventTabCreated, datatypes.EventTabClosed:
		return datatypes.KindTab, datatypes.ActionPayload{Tab: &datatypes.TabPayload{URL: rawURL}}
	case datatypes.EventDOMMutation:
		return datatypes.KindDOM, datatypes.ActionPayload{DOM: &datatypes.DOMPayload{
			Added:   payloadInt(ev.Payload, "added"),
			Removed: payloadInt(ev.Payload, "removed"),
			Attrs:   payloadInt(ev.Payload, "attrs"),
		}}
	case datatypes.EventStateSnapshot:
		testids := payloadStringSlice(ev.Payload, "testids")
		testids = sortedUnique(testids)
		sig := sanitize.ScrubText(strings.Join(testids, "|"), stateSigMaxLen)
		return datatypes.KindState, datatypes.ActionPayload{State: &datatypes.StatePayload{
			Reason:  payloadString(ev.Payload, "reason"),
			TestIDs: testids,
			Sig:     sig,
			N:       len(testids),
		}}
	}
	return datatypes.KindOther, datatypes.ActionPayload{}
}

// ActionID returns the stable merge key for an action. Two actions with the
// same id are considered the same node.
func ActionID(kind datatypes.ActionKind, host, path string, p datatypes.ActionPayload) string {
	switch kind {
	case datatypes.KindClick:
		var key string
		switch {
		case p.Click == nil:
			key = "sel="
		case p.Click.TestID != "":
			key = "testid=" + p.Click.TestID
		case p.Click.AriaLabel != "":
			key = "aria=" + p.Click.AriaLabel
		case p.Click.ID != "":
			key = "id=" + p.Click.ID
		default:
			key = "sel=" + p.Click.Selector
		}
		key = sanitize.ScrubText(key, clickKeyMaxLen)
		return fmt.Sprintf("CLICK:%s%s:%s", host, path, key)

	case datatypes.KindShortcut:
		combo := ""
		if p.Shortcut != nil {
			combo = p.Shortcut.Combo
		}
		return "SHORTCUT:" + sanitize.ScrubText(combo, comboMaxLen)

	case datatypes.KindKeyboard:
		key := ""
		if p.Key != nil {
			key = p.Key.Key
		}
		return "KEY:" + sanitize.ScrubText(key, keyMaxLen)

	case datatypes.KindNav:
		return fmt.Sprintf("NAV:%s%s", host, path)
	case datatypes.KindTab:
		return fmt.Sprintf("TAB:%s%s", host, path)
	case datatypes.KindDOM:
		return fmt.Sprintf("DOM:%s%s", host, path)

	case datatypes.KindState:
		return fmt.Sprintf("STATE:%s%s:%s", host, path, stateDigest(p.State))
	}
	return fmt.Sprintf("OTHER:%s%s:%s", host, path, kind)
}

// stateDigest hashes the state signature to a short fixed-width digest.
// An empty signature yields the literal "empty" so blank screens still merge.
func stateDigest(p *datatypes.StatePayload) string {
	sig := ""
	if p != nil {
		sig = p.Sig
		if sig == "" && len(p.TestIDs) > 0 {
			sig = strings.Join(sortedUnique(p.TestIDs), "|")
		}
	}
	sig = sanitize.ScrubText(sig, stateSigMaxLen)
	if sig == "" {
		return "empty"
	}
	sum := sha1.Sum([]byte(sig))
	return hex.EncodeToString(sum[:])[:stateDigestLen]
}

// ActionLabel renders the multi-line human-readable summary for a node.
// Labels are display-only: they must never influence merging.
func ActionLabel(kind datatypes.ActionKind, host, path string, p datatypes.ActionPayload) string {
	loc := host + path
	switch kind {
	case datatypes.KindClick:
		c := p.Click
		if c == nil {
			c = &datatypes.ClickPayload{}
		}
		role := sanitize.ScrubText(c.Tag, 12)
		var bits []string
		for _, b := range []string{
			sanitize.ScrubText(c.AriaLabel, 0),
			sanitize.ScrubText(c.TestID, 0),
			sanitize.ScrubText(c.ID, 0),
		} {
			if b != "" {
				bits = append(bits, b)
			}
		}
		hint := strings.Join(bits, " / ")
		if hint == "" {
			hint = sanitize.ScrubText(c.Selector, 90)
		}
		if hint == "" {
			hint = "(unknown element)"
		}
		return fmt.Sprintf("Click [%s] %s\n%s", role, hint, loc)

	case datatypes.KindShortcut:
		combo := ""
		if p.Shortcut != nil {
			combo = p.Shortcut.Combo
		}
		return fmt.Sprintf("Shortcut %s\n%s", combo, loc)

	case datatypes.KindKeyboard:
		key := ""
		if p.Key != nil {
			key = p.Key.Key
		}
		return fmt.Sprintf("Keyboard %s\n%s", sanitize.ScrubText(key, keyMaxLen), loc)

	case datatypes.KindNav:
		return "Navigate\n" + loc
	case datatypes.KindTab:
		return "Tab\n" + loc
	case datatypes.KindDOM:
		return "DOM change\n" + loc

	case datatypes.KindState:
		return fmt.Sprintf("State\n%s\n%s", statePreview(p.State), loc)
	}
	return fmt.Sprintf("%s\n%s", kind, loc)
}

func statePreview(p *datatypes.StatePayload) string {
	if p == nil {
		return "(no testids)"
	}
	if len(p.TestIDs) > 0 {
		n := len(p.TestIDs)
		shown := make([]string, 0, 4)
		for _, t := range p.TestIDs[:min(4, n)] {
			shown = append(shown, sanitize.ScrubText(t, 28))
		}
		preview := strings.Join(shown, ", ")
		if n > 4 {
			preview += fmt.Sprintf(" +%d", n-4)
		}
		return preview
	}
	if s := sanitize.ScrubText(p.Sig, 80); s != "" {
		return s
	}
	return "(no testids)"
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func payloadString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func payloadInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func payloadStringSlice(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(e))
		}
		return out
	}
	return nil
}
