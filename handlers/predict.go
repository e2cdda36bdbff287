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
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thirdlayer/actiongraph/datatypes"
	"github.com/thirdlayer/actiongraph/observability"
	"github.com/thirdlayer/actiongraph/store"
)

const defaultPredictK = 5

// PredictNext returns the frequency-ranked likely next actions for the
// current context (last state snapshot, else last workflow action). An empty
// prediction list with ok:true is the normal "nothing observed yet" answer.
func PredictNext(st *store.AppStore, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.ObservePredict()

		k := defaultPredictK
		if raw := c.Query("k"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				k = parsed
			}
		}

		contextID, contextNode, predictions := st.PredictNext(k)
		if predictions == nil {
			predictions = []datatypes.GraphNode{}
		}
		c.JSON(http.StatusOK, datatypes.PredictResponse{
			OK:          true,
			ContextNode: contextID,
			Context:     contextNode,
			Predictions: predictions,
		})
	}
}
