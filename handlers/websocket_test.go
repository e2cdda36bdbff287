// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/store"
)

func dialTestWS(t *testing.T, st *store.AppStore, hub *Hub, ing eventIngestor) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/ws", HandleWebSocket(hub, st, ing))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHandleWebSocket_HelloFrame(t *testing.T) {
	st := store.New(10)
	st.SetRecording(true, "sess-1")
	hub := NewHub(nil)
	conn := dialTestWS(t, st, hub, nil)

	var hello map[string]any
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello["type"] != "hello" || hello["recording"] != true || hello["session_id"] != "sess-1" {
		t.Errorf("hello = %+v", hello)
	}
}

func TestHandleWebSocket_PingPong(t *testing.T) {
	st := store.New(10)
	hub := NewHub(nil)
	conn := dialTestWS(t, st, hub, nil)

	var hello map[string]any
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pong" {
		t.Errorf("reply = %q", data)
	}
}

func TestHandleWebSocket_EventFramesRequireRecording(t *testing.T) {
	st := store.New(10)
	hub := NewHub(nil)
	ing := &fakeIngestor{}
	conn := dialTestWS(t, st, hub, ing)

	var hello map[string]any
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}

	frame, _ := json.Marshal(map[string]any{
		"type":  "event",
		"event": datatypes.RawEvent{TS: 1000, Type: datatypes.EventPointerDown},
	})
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatal(err)
	}
	// Round trip a ping so the event frame is known to be processed.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatal(err)
	}
	if len(ing.ingested()) != 0 {
		t.Error("event ingested while not recording")
	}

	st.SetRecording(true, "sess-1")
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatal(err)
	}
	got := ing.ingested()
	if len(got) != 1 {
		t.Fatalf("events = %d", len(got))
	}
	if got[0].TS != 1000 {
		t.Errorf("event = %+v", got[0])
	}
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	st := store.New(10)
	hub := NewHub(nil)
	conn := dialTestWS(t, st, hub, nil)

	var hello map[string]any
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	if hub.Clients() != 1 {
		t.Fatalf("clients = %d", hub.Clients())
	}

	hub.BroadcastJSON(map[string]any{"type": "action", "id": "c1"})
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatal(err)
	}
	if frame["type"] != "action" || frame["id"] != "c1" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	c := &wsClient{}
	hub.clients[c] = struct{}{}
	hub.unregister(c)
	hub.unregister(c)
	if hub.Clients() != 0 {
		t.Errorf("clients = %d", hub.Clients())
	}
}
