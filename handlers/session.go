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
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thirdlayer/actiongraph/archive"
	"github.com/thirdlayer/actiongraph/config"
	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/recorder"
	"github.com/thirdlayer/actiongraph/sanitize"
	"github.com/thirdlayer/actiongraph/store"
)

// StartSession opens a recording session. The session boundary matters: the
// context is reset before the driver emits anything, so no edge can connect
// across recorder sessions, and the stale session id is cleared before the
// initial burst of events.
func StartSession(st *store.AppStore, cfg *config.Manager, agent recorder.Agent) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.StartSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if recording, sessionID := st.Recording(); recording {
			c.JSON(http.StatusOK, datatypes.StartSessionResponse{OK: true, SessionID: sessionID})
			return
		}

		url := strings.TrimSpace(req.URL)
		host := sanitize.SafeHost(url)
		if !cfg.HostAllowed(host) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("host not allowed: %s (allowed: %v)", host, cfg.Current().AllowedHosts),
			})
			return
		}

		st.SetRecording(false, "")
		st.ResetContext()

		sessionID, err := agent.Start(c.Request.Context(), url)
		if err != nil {
			slog.Error("driver start failed", "url", url, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "driver start failed: " + err.Error()})
			return
		}

		st.SetRecording(true, sessionID)
		slog.Info("recording session started", "sessionID", sessionID, "host", host)
		c.JSON(http.StatusOK, datatypes.StartSessionResponse{OK: true, SessionID: sessionID})
	}
}

// StopSession ends the active session: stop the driver, archive the final
// graph snapshot, and reset the linking context.
func StopSession(st *store.AppStore, agent recorder.Agent, arch *archive.Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		recording, sessionID := st.Recording()
		if !recording {
			c.JSON(http.StatusOK, datatypes.StopSessionResponse{OK: true})
			return
		}

		if err := agent.Stop(c.Request.Context()); err != nil {
			slog.Warn("driver stop failed", "sessionID", sessionID, "error", err)
		}

		if arch != nil && sessionID != "" {
			snap := st.SnapshotGraph(time.Now().UnixMilli())
			if err := arch.Save(sessionID, snap); err != nil {
				slog.Warn("failed to archive session snapshot", "sessionID", sessionID, "error", err)
			}
		}

		st.SetRecording(false, "")
		st.ResetContext()
		slog.Info("recording session stopped", "sessionID", sessionID)
		c.JSON(http.StatusOK, datatypes.StopSessionResponse{OK: true})
	}
}
