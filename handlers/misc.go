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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thirdlayer/actiongraph/config"
	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/store"
)

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetState reports the recorder lifecycle state and the live host allowlist.
func GetState(st *store.AppStore, cfg *config.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		recording, sessionID := st.Recording()
		c.JSON(http.StatusOK, datatypes.StateResponse{
			Recording:    recording,
			SessionID:    sessionID,
			AllowedHosts: cfg.Current().AllowedHosts,
		})
	}
}

// GetGraph returns the current graph snapshot.
func GetGraph(st *store.AppStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, st.SnapshotGraph(time.Now().UnixMilli()))
	}
}

// ClearAll wipes the graph, predictor, memory, buffers, and context.
func ClearAll(st *store.AppStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		st.Clear()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// MemorySearch runs a substring search over recorded procedure hints.
func MemorySearch(st *store.AppStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := st.Memory().Search(c.Query("q"), 10)
		if results == nil {
			results = []datatypes.MemoryItem{}
		}
		c.JSON(http.StatusOK, datatypes.MemorySearchResponse{OK: true, Results: results})
	}
}
