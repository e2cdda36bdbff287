// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/thirdlayer/actiongraph/archive"
	"github.com/thirdlayer/actiongraph/config"
	"github.com/thirdlayer/actiongraph/handlers"
	"github.com/thirdlayer/actiongraph/ingest"
	"github.com/thirdlayer/actiongraph/middleware"
	"github.com/thirdlayer/actiongraph/observability"
	"github.com/thirdlayer/actiongraph/recorder"
	"github.com/thirdlayer/actiongraph/routes"
	"github.com/thirdlayer/actiongraph/store"
)

// initTracer sets up OTLP tracing when a collector endpoint is configured.
// Without OTEL_EXPORTER_OTLP_ENDPOINT the service runs untraced.
func initTracer(ctx context.Context) (func(context.Context), error) {
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		return func(context.Context) {}, nil
	}

	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("actiongraph-recorder")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := initTracer(ctx)
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	configPath := os.Getenv("ACTIONGRAPH_CONFIG")
	if configPath == "" {
		configPath = "actiongraph.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if port := os.Getenv("ACTIONGRAPH_PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	cfgManager := config.NewManager(cfg, configPath)

	metrics := observability.InitMetrics()

	st := store.New(cfg.MaxEvents)
	observability.RegisterStoreCollectors(st)

	arch, err := archive.Open(archive.Config{Path: cfg.ArchivePath})
	if err != nil {
		log.Fatalf("failed to open the session archive: %v", err)
	}
	defer arch.Close()

	hub := handlers.NewHub(metrics)
	ingestor := ingest.New(st, hub, cfg.DOMMutationSampleMs, metrics)
	agent := recorder.NewRemote(hub, recorder.RemoteOptions{
		DOMMutationSampleMs: cfg.DOMMutationSampleMs,
		IdleGapMs:           cfg.IdleGapMs,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("actiongraph-recorder"))
	router.Use(middleware.CORS(cfgManager))

	routes.SetupRoutes(router, routes.Deps{
		Store:    st,
		Config:   cfgManager,
		Agent:    agent,
		Ingestor: ingestor,
		Hub:      hub,
		Archive:  arch,
		Metrics:  metrics,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("recorder backend listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cfgManager.Watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("recorder backend exited: %v", err)
	}
	slog.Info("recorder backend stopped")
}
