// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thirdlayer/actiongraph/archive"
	"github.com/thirdlayer/actiongraph/config"
	"github.com/thirdlayer/actiongraph/handlers"
	"github.com/thirdlayer/actiongraph/ingest"
	"github.com/thirdlayer/actiongraph/observability"
	"github.com/thirdlayer/actiongraph/recorder"
	"github.com/thirdlayer/actiongraph/store"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Store    *store.AppStore
	Config   *config.Manager
	Agent    recorder.Agent
	Ingestor *ingest.Ingestor
	Hub      *handlers.Hub
	Archive  *archive.Archive
	Metrics  *observability.Metrics
}

func SetupRoutes(router *gin.Engine, d Deps) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", handlers.HandleWebSocket(d.Hub, d.Store, d.Ingestor))

	api := router.Group("/api")
	{
		api.GET("/state", handlers.GetState(d.Store, d.Config))
		api.POST("/session/start", handlers.StartSession(d.Store, d.Config, d.Agent))
		api.POST("/session/stop", handlers.StopSession(d.Store, d.Agent, d.Archive))
		api.POST("/events", handlers.PostEvent(d.Store, d.Ingestor))
		api.GET("/graph", handlers.GetGraph(d.Store))
		api.GET("/predict", handlers.PredictNext(d.Store, d.Metrics))
		api.POST("/execute", handlers.ExecuteAction(d.Store, d.Agent, d.Metrics))
		api.GET("/memory/search", handlers.MemorySearch(d.Store))
		api.POST("/clear", handlers.ClearAll(d.Store))

		sessions := api.Group("/sessions")
		{
			sessions.GET("", handlers.ListSessions(d.Archive))
			sessions.GET("/:sessionId/graph", handlers.GetSessionGraph(d.Archive))
		}
	}
}
