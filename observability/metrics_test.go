// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitMetrics_Singleton(t *testing.T) {
	a := InitMetrics()
	b := InitMetrics()
	if a == nil || a != b {
		t.Error("InitMetrics must return one shared instance")
	}
}

func TestNilReceiverSafety(t *testing.T) {
	var m *Metrics
	m.ObserveEvent("POINTER_DOWN")
	m.ObserveAction("CLICK")
	m.ObserveDOMSampledOut()
	m.ObservePredict()
	m.ObserveExecute(true)
	m.AddWSClient(1)
}

func TestCounters(t *testing.T) {
	m := InitMetrics()

	before := testutil.ToFloat64(m.EventsTotal.WithLabelValues("POINTER_DOWN"))
	m.ObserveEvent("POINTER_DOWN")
	if got := testutil.ToFloat64(m.EventsTotal.WithLabelValues("POINTER_DOWN")); got != before+1 {
		t.Errorf("events_total = %v, want %v", got, before+1)
	}

	m.ObserveExecute(false)
	if got := testutil.ToFloat64(m.ExecutesTotal.WithLabelValues("error")); got < 1 {
		t.Errorf("executes_total{error} = %v", got)
	}

	m.AddWSClient(1)
	m.AddWSClient(-1)
}
