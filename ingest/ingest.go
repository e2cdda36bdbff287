// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest receives raw driver events, normalizes them into actions,
// and forwards them to the store's session linker. It also fans out
// event/action frames to WebSocket clients and drops over-frequent DOM
// mutation events through a rate limiter.
package ingest

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/identity"
	"github.com/thirdlayer/actiongraph/observability"
	"github.com/thirdlayer/actiongraph/store"
)

// Broadcaster pushes JSON frames to connected clients.
type Broadcaster interface {
	BroadcastJSON(v any)
}

// Ingestor is the thin pipeline: raw event -> normalized action -> linker.
type Ingestor struct {
	store   *store.AppStore
	hub     Broadcaster
	metrics *observability.Metrics

	// domLimiter samples coarse DOM mutation events; nil disables sampling.
	domLimiter *rate.Limiter
}

// New builds an ingestor. domMutationSampleMs <= 0 disables DOM sampling;
// metrics may be nil.
func New(st *store.AppStore, hub Broadcaster, domMutationSampleMs int, metrics *observability.Metrics) *Ingestor {
	var limiter *rate.Limiter
	if domMutationSampleMs > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Duration(domMutationSampleMs)*time.Millisecond), 1)
	}
	return &Ingestor{
		store:      st,
		hub:        hub,
		metrics:    metrics,
		domLimiter: limiter,
	}
}

// OnEvent processes one raw event end to end. Malformed events never error:
// unknown types normalize to OTHER and missing fields fall back to empties.
func (in *Ingestor) OnEvent(ev datatypes.RawEvent) {
	if ev.Type == datatypes.EventDOMMutation && in.domLimiter != nil && !in.domLimiter.Allow() {
		in.metrics.ObserveDOMSampledOut()
		return
	}

	in.store.AppendEvent(ev)
	in.metrics.ObserveEvent(string(ev.Type))

	act := identity.Normalize(ev)
	in.store.AppendAction(act)
	in.metrics.ObserveAction(string(act.Kind))

	in.upsertHint(act)

	if in.hub != nil {
		in.hub.BroadcastJSON(map[string]any{"type": "event", "event": ev})
		in.hub.BroadcastJSON(map[string]any{"type": "action", "action": act})
	}

	slog.Debug("event ingested", "type", ev.Type, "kind", act.Kind, "id", act.ID)
}

// upsertHint records the step as a searchable procedure hint. Simplistic on
// purpose: one item per (session, action id), replaced on repeat.
func (in *Ingestor) upsertHint(act datatypes.Action) {
	last := in.store.LastActionID()
	if last == "" {
		return
	}
	_, sessionID := in.store.Recording()
	if sessionID == "" {
		sessionID = "nosess"
	}
	in.store.Memory().Upsert(
		fmt.Sprintf("hint:%s:%s", sessionID, last),
		"Recent step",
		act.Label,
		[]string{act.Host},
	)
}
