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

	"github.com/thirdlayer/actiongraph/archive"
	"github.com/thirdlayer/actiongraph/datatypes"
)

// ListSessions returns the archived session snapshots, newest first.
func ListSessions(arch *archive.Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		refs, err := arch.List()
		if err != nil {
			slog.Error("failed to list archived sessions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list archived sessions"})
			return
		}
		if refs == nil {
			refs = []datatypes.SessionRef{}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "sessions": refs})
	}
}

// GetSessionGraph returns the archived final snapshot of one session.
func GetSessionGraph(arch *archive.Archive) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")
		snap, found, err := arch.Get(sessionID)
		if err != nil {
			slog.Error("failed to load archived session", "sessionID", sessionID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load archived session"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
