// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the gin handlers for the recorder API and the
// WebSocket hub that connects driver and UI clients.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/observability"
	"github.com/thirdlayer/actiongraph/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// wsClient wraps a connection with a write lock; gorilla connections do not
// allow concurrent writers.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) writeText(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// Hub tracks connected WebSocket clients and fans frames out to all of them.
// Dead clients are pruned when a write fails.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	metrics *observability.Metrics
}

func NewHub(metrics *observability.Metrics) *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		metrics: metrics,
	}
}

func (h *Hub) register(conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.AddWSClient(1)
	return c
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.metrics.AddWSClient(-1)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastJSON sends a frame to every client, dropping the ones that fail.
func (h *Hub) BroadcastJSON(v any) {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var dead []*wsClient
	for _, c := range clients {
		if err := c.writeJSON(v); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		h.unregister(c)
		_ = c.conn.Close()
	}
}

// eventIngestor decouples the hub from the ingest package.
type eventIngestor interface {
	OnEvent(ev datatypes.RawEvent)
}

// wsFrame is an inbound client frame. Driver clients stream raw events as
// {"type":"event","event":{...}}.
type wsFrame struct {
	Type  string             `json:"type"`
	Event datatypes.RawEvent `json:"event"`
}

// HandleWebSocket upgrades the connection, greets the client with the
// current recording state, answers "ping" keepalives, and ingests event
// frames pushed by driver clients.
func HandleWebSocket(hub *Hub, st *store.AppStore, ing eventIngestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		client := hub.register(ws)
		defer hub.unregister(client)
		slog.Info("websocket client connected")

		recording, sessionID := st.Recording()
		if err := client.writeJSON(map[string]any{
			"type":       "hello",
			"recording":  recording,
			"session_id": sessionID,
		}); err != nil {
			return
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				slog.Info("websocket client disconnected", "error", err.Error())
				return
			}

			if strings.TrimSpace(string(data)) == "ping" {
				if err := client.writeText("pong"); err != nil {
					return
				}
				continue
			}

			var frame wsFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				// Unparseable frames are dropped silently.
				continue
			}
			if frame.Type == "event" && ing != nil {
				if rec, _ := st.Recording(); rec {
					ing.OnEvent(frame.Event)
				}
			}
		}
	}
}
