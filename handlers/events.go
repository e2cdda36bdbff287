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

	"github.com/gin-gonic/gin"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/store"
)

// PostEvent is the HTTP ingestion path for driver clients that do not hold a
// WebSocket connection. Events outside an active session are dropped.
func PostEvent(st *store.AppStore, ing eventIngestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ev datatypes.RawEvent
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if recording, _ := st.Recording(); !recording {
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": "not recording"})
			return
		}

		ing.OnEvent(ev)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
