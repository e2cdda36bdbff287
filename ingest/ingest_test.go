// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"sync"
	"testing"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/store"
)

// fakeHub captures broadcast frames for assertions.
type fakeHub struct {
	mu     sync.Mutex
	frames []map[string]any
}

func (h *fakeHub) BroadcastJSON(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := v.(map[string]any); ok {
		h.frames = append(h.frames, m)
	}
}

func (h *fakeHub) frameTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.frames))
	for _, f := range h.frames {
		out = append(out, f["type"].(string))
	}
	return out
}

func clickEvent(ts int64) datatypes.RawEvent {
	return datatypes.RawEvent{
		V:       1,
		TS:      ts,
		Source:  datatypes.SourceInjected,
		Type:    datatypes.EventPointerDown,
		URL:     "http://localhost:3000/app",
		Payload: map[string]any{"testid": "save-btn"},
	}
}

func TestOnEvent_Pipeline(t *testing.T) {
	st := store.New(100)
	hub := &fakeHub{}
	in := New(st, hub, 0, nil)

	in.OnEvent(clickEvent(1000))

	if st.EventCount() != 1 || st.ActionCount() != 1 {
		t.Errorf("buffers = %d events %d actions", st.EventCount(), st.ActionCount())
	}
	nodes, _ := st.GraphLen()
	if nodes != 1 {
		t.Errorf("nodes = %d, want 1", nodes)
	}
	types := hub.frameTypes()
	if len(types) != 2 || types[0] != "event" || types[1] != "action" {
		t.Errorf("frames = %v", types)
	}
}

func TestOnEvent_DOMSampling(t *testing.T) {
	st := store.New(100)
	// A very long sample interval: the first mutation passes, the burst
	// behind it is dropped.
	in := New(st, nil, 60_000, nil)

	for i := 0; i < 5; i++ {
		in.OnEvent(datatypes.RawEvent{
			TS:   int64(1000 + i),
			Type: datatypes.EventDOMMutation,
			URL:  "http://localhost:3000/app",
		})
	}

	if got := st.EventCount(); got != 1 {
		t.Errorf("events = %d, want 1 after sampling", got)
	}
}

func TestOnEvent_SamplingDisabled(t *testing.T) {
	st := store.New(100)
	in := New(st, nil, 0, nil)

	for i := 0; i < 3; i++ {
		in.OnEvent(datatypes.RawEvent{
			TS:   int64(1000 + i),
			Type: datatypes.EventDOMMutation,
			URL:  "http://localhost:3000/app",
		})
	}
	if got := st.EventCount(); got != 3 {
		t.Errorf("events = %d, want 3 with sampling off", got)
	}
}

func TestOnEvent_SamplingOnlyAppliesToDOMMutations(t *testing.T) {
	st := store.New(100)
	in := New(st, nil, 60_000, nil)

	for i := 0; i < 3; i++ {
		in.OnEvent(clickEvent(int64(1000 + i)))
	}
	if got := st.EventCount(); got != 3 {
		t.Errorf("events = %d, clicks must never be sampled out", got)
	}
}

func TestOnEvent_UpsertsHint(t *testing.T) {
	st := store.New(100)
	st.SetRecording(true, "sess-1")
	in := New(st, nil, 0, nil)

	in.OnEvent(clickEvent(1000))

	if st.Memory().Len() != 1 {
		t.Fatalf("memory len = %d", st.Memory().Len())
	}
	hits := st.Memory().Search("save-btn", 5)
	if len(hits) != 1 {
		t.Fatalf("hint not searchable by label content: %+v", hits)
	}
	if hits[0].Title != "Recent step" {
		t.Errorf("title = %q", hits[0].Title)
	}
	if len(hits[0].Tags) != 1 || hits[0].Tags[0] != "localhost:3000" {
		t.Errorf("tags = %+v", hits[0].Tags)
	}
}

func TestOnEvent_UnknownTypeNormalizesToOther(t *testing.T) {
	st := store.New(100)
	in := New(st, nil, 0, nil)

	in.OnEvent(datatypes.RawEvent{
		TS:   1000,
		Type: datatypes.EventType("something_new"),
		URL:  "http://localhost:3000/app",
	})

	if st.ActionCount() != 1 {
		t.Fatal("unknown event type should still produce an action")
	}
	id := st.LastActionID()
	act, ok := st.FindAction(id)
	if !ok {
		t.Fatalf("action %q not found", id)
	}
	if act.Kind != datatypes.KindOther {
		t.Errorf("kind = %s", act.Kind)
	}
	if act.Host != "localhost:3000" {
		t.Errorf("host = %q", act.Host)
	}
}
