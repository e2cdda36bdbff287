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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/observability"
	"github.com/thirdlayer/actiongraph/recorder"
	"github.com/thirdlayer/actiongraph/store"
)

// ExecuteAction replays a recorded action by id through the driver. Replay
// failures are reported as ok:false, not HTTP errors: the request itself was
// well-formed.
func ExecuteAction(st *store.AppStore, agent recorder.Agent, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ExecuteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if recording, _ := st.Recording(); !recording || agent == nil {
			metrics.ObserveExecute(false)
			c.JSON(http.StatusOK, datatypes.ExecuteResponse{OK: false, Error: "no active session"})
			return
		}

		act, ok := st.FindAction(req.ActionID)
		if !ok {
			metrics.ObserveExecute(false)
			c.JSON(http.StatusOK, datatypes.ExecuteResponse{OK: false, Error: "action not found"})
			return
		}

		if err := agent.Execute(c.Request.Context(), act); err != nil {
			slog.Warn("action replay failed", "actionID", act.ID, "kind", act.Kind, "error", err)
			metrics.ObserveExecute(false)
			c.JSON(http.StatusOK, datatypes.ExecuteResponse{OK: false, Error: err.Error()})
			return
		}

		metrics.ObserveExecute(true)
		c.JSON(http.StatusOK, datatypes.ExecuteResponse{OK: true})
	}
}
