// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry records call-level Prometheus metrics for the bridge and
// exposes them on the /metrics endpoint.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Call outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "modmcp",
		Name:      "calls_total",
		Help:      "Total module calls handled by the execution router.",
	}, []string{"module", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "modmcp",
		Name:      "call_duration_seconds",
		Help:      "Duration of module calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"module"})

	progressNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "modmcp",
		Name:      "progress_notifications_total",
		Help:      "Progress notifications forwarded to callers.",
	})
)

// RecordCall records one completed module call.
func RecordCall(module string, isError bool, duration time.Duration) {
	outcome := OutcomeSuccess
	if isError {
		outcome = OutcomeError
	}
	callsTotal.WithLabelValues(module, outcome).Inc()
	callDuration.WithLabelValues(module).Observe(duration.Seconds())
}

// RecordProgressNotification counts one forwarded progress notification.
func RecordProgressNotification() {
	progressNotifications.Inc()
}

// Handler returns the HTTP handler serving the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
