// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the recorder backend.
//
// # Description
//
// Counters and gauges covering the ingestion pipeline (events by type,
// actions by kind, sampled-out DOM mutations), the WebSocket hub, and the
// session linker (unresolved pending links, graph size).
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Call InitMetrics() once at
// startup; store-derived collectors are registered with
// RegisterStoreCollectors().
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
// Helper methods are nil-receiver safe so tests can run without metrics.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/thirdlayer/actiongraph/store"
)

const metricsNamespace = "actiongraph"

// Metrics holds all Prometheus metrics for the recorder.
type Metrics struct {
	// EventsTotal counts raw driver events accepted into the pipeline.
	// Labels: type (POINTER_DOWN, STATE_SNAPSHOT, ...)
	EventsTotal *prometheus.CounterVec

	// ActionsTotal counts normalized actions by kind.
	// Labels: kind (CLICK, STATE, ...)
	ActionsTotal *prometheus.CounterVec

	// DOMSampledOutTotal counts DOM mutation events dropped by the
	// ingestion sampler.
	DOMSampledOutTotal prometheus.Counter

	// WSClients tracks connected WebSocket clients.
	WSClients prometheus.Gauge

	// PredictRequestsTotal counts prediction queries.
	PredictRequestsTotal prometheus.Counter

	// ExecutesTotal counts replay attempts by outcome.
	// Labels: status (success, error)
	ExecutesTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *Metrics

var (
	initOnce     sync.Once
	registerOnce sync.Once
)

// InitMetrics creates and registers all metrics once and returns the
// singleton. Safe to call repeatedly.
func InitMetrics() *Metrics {
	initOnce.Do(func() {
		DefaultMetrics = &Metrics{
			EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "Raw driver events accepted, by event type.",
			}, []string{"type"}),
			ActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "actions_total",
				Help:      "Normalized actions processed, by kind.",
			}, []string{"kind"}),
			DOMSampledOutTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dom_mutations_sampled_out_total",
				Help:      "DOM mutation events dropped by the ingestion sampler.",
			}),
			WSClients: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "ws_clients",
				Help:      "Connected WebSocket clients.",
			}),
			PredictRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "predict_requests_total",
				Help:      "Prediction queries served.",
			}),
			ExecutesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "executes_total",
				Help:      "Action replay attempts, by outcome.",
			}, []string{"status"}),
		}
	})
	return DefaultMetrics
}

// RegisterStoreCollectors registers collectors that read the store directly:
// unresolved pending links and graph size. Call once after the store exists.
func RegisterStoreCollectors(st *store.AppStore) {
	registerOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unresolved_pending_links_total",
			Help:      "Workflow actions whose deferred post-state link was discarded.",
		}, func() float64 {
			return float64(st.UnresolvedPendingLinks())
		}))
		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_nodes",
			Help:      "Distinct action nodes in the graph.",
		}, func() float64 {
			nodes, _ := st.GraphLen()
			return float64(nodes)
		}))
		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_edges",
			Help:      "Distinct directed edges in the graph.",
		}, func() float64 {
			_, edges := st.GraphLen()
			return float64(edges)
		}))
	})
}

// ObserveEvent records one accepted raw event. Nil-safe.
func (m *Metrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType).Inc()
}

// ObserveAction records one normalized action. Nil-safe.
func (m *Metrics) ObserveAction(kind string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind).Inc()
}

// ObserveDOMSampledOut records one sampled-out DOM mutation. Nil-safe.
func (m *Metrics) ObserveDOMSampledOut() {
	if m == nil {
		return
	}
	m.DOMSampledOutTotal.Inc()
}

// ObservePredict records one prediction query. Nil-safe.
func (m *Metrics) ObservePredict() {
	if m == nil {
		return
	}
	m.PredictRequestsTotal.Inc()
}

// ObserveExecute records one replay attempt. Nil-safe.
func (m *Metrics) ObserveExecute(ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
	}
	m.ExecutesTotal.WithLabelValues(status).Inc()
}

// AddWSClient adjusts the connected-clients gauge. Nil-safe.
func (m *Metrics) AddWSClient(delta float64) {
	if m == nil {
		return
	}
	m.WSClients.Add(delta)
}
