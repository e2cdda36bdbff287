// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package recorder defines the boundary to the browser-automation driver.
// The driver itself lives outside this backend (a browser extension or an
// automation harness connected over the WebSocket channel); this package
// only knows how to start/stop it and hand it replay commands.
package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/sanitize"
)

var (
	// ErrNotImplemented is returned for action kinds the driver cannot replay.
	ErrNotImplemented = errors.New("execution not implemented for this action kind")

	// ErrNoDriver is returned when no driver client is connected.
	ErrNoDriver = errors.New("no driver connected")
)

// Agent starts/stops a recording session and replays recorded actions.
type Agent interface {
	// Start opens a recording session on url and returns its session id.
	Start(ctx context.Context, url string) (string, error)
	// Stop ends the active session.
	Stop(ctx context.Context) error
	// Execute replays a recorded action. Only CLICK, NAV, and SHORTCUT are
	// replayable; other kinds fail with ErrNotImplemented.
	Execute(ctx context.Context, act datatypes.Action) error
}

// Broadcaster pushes JSON frames to connected driver/UI clients.
type Broadcaster interface {
	BroadcastJSON(v any)
	Clients() int
}

// RemoteOptions carries the capture configuration pushed to the driver at
// session start.
type RemoteOptions struct {
	DOMMutationSampleMs int
	IdleGapMs           int
}

// RemoteAgent drives a recorder client over the WebSocket hub: session
// lifecycle and replay commands are broadcast as JSON frames, and the client
// streams raw events back through the ingestion endpoints.
type RemoteAgent struct {
	hub  Broadcaster
	opts RemoteOptions
}

func NewRemote(hub Broadcaster, opts RemoteOptions) *RemoteAgent {
	return &RemoteAgent{hub: hub, opts: opts}
}

// Start announces a new session to the connected driver. Fails when no
// driver client is listening, so a session never starts silently dead.
func (a *RemoteAgent) Start(ctx context.Context, url string) (string, error) {
	if a.hub.Clients() == 0 {
		return "", ErrNoDriver
	}
	sessionID := uuid.NewString()
	a.hub.BroadcastJSON(map[string]any{
		"type":                   "session_start",
		"session_id":             sessionID,
		"url":                    url,
		"dom_mutation_sample_ms": a.opts.DOMMutationSampleMs,
		"idle_gap_ms":            a.opts.IdleGapMs,
	})
	return sessionID, nil
}

// Stop announces session end. Broadcasting to zero clients is fine here;
// the driver may already be gone.
func (a *RemoteAgent) Stop(ctx context.Context) error {
	a.hub.BroadcastJSON(map[string]any{"type": "session_stop"})
	return nil
}

// Execute maps a recorded action onto a driver command: CLICK clicks by
// selector, NAV navigates by URL, SHORTCUT sends the normalized key combo.
func (a *RemoteAgent) Execute(ctx context.Context, act datatypes.Action) error {
	if a.hub.Clients() == 0 {
		return ErrNoDriver
	}

	switch act.Kind {
	case datatypes.KindClick:
		if act.Payload.Click == nil || act.Payload.Click.Selector == "" {
			return fmt.Errorf("click action %s has no selector", act.ID)
		}
		a.hub.BroadcastJSON(map[string]any{
			"type":     "execute",
			"command":  "click",
			"selector": act.Payload.Click.Selector,
		})
		return nil

	case datatypes.KindNav:
		url := act.URL
		if act.Payload.Nav != nil && act.Payload.Nav.URL != "" {
			url = act.Payload.Nav.URL
		}
		if url == "" {
			return fmt.Errorf("nav action %s has no url", act.ID)
		}
		a.hub.BroadcastJSON(map[string]any{
			"type":    "execute",
			"command": "navigate",
			"url":     url,
		})
		return nil

	case datatypes.KindShortcut:
		if act.Payload.Shortcut == nil || act.Payload.Shortcut.Combo == "" {
			return fmt.Errorf("shortcut action %s has no combo", act.ID)
		}
		a.hub.BroadcastJSON(map[string]any{
			"type":    "execute",
			"command": "press",
			"combo":   sanitize.NormalizeCombo(act.Payload.Shortcut.Combo),
		})
		return nil
	}

	return fmt.Errorf("%w: %s", ErrNotImplemented, act.Kind)
}
