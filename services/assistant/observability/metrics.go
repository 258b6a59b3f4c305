// Copyright (C) 2025 Classdesk (engineering@classdesk.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the assistant.
//
// # Description
//
// Metrics cover the query lifecycle: how queries resolve (which intent,
// or fallback), how long fallback generations take, and how often the
// moderation gate refuses input. Exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "classdesk"

const assistantSubsystem = "assistant"

// AssistantMetrics holds all Prometheus metrics for query handling.
// Initialize once at startup via InitMetrics().
type AssistantMetrics struct {
	// QueriesTotal counts resolved queries.
	// Labels: intent (schedule, attendance_query, ..., fallback), status (ok, error)
	QueriesTotal *prometheus.CounterVec

	// FallbackDurationSeconds measures generative fallback latency.
	FallbackDurationSeconds prometheus.Histogram

	// ModerationBlocksTotal counts inputs refused by the moderation gate.
	ModerationBlocksTotal prometheus.Counter

	// HistoryTurnsStored tracks the history length saved per identity.
	HistoryTurnsStored prometheus.Histogram
}

// DefaultMetrics is the singleton instance. Initialized by InitMetrics().
var DefaultMetrics *AssistantMetrics

// InitMetrics creates and registers all assistant metrics. Call once at
// application startup. Panics if called twice (duplicate registration).
func InitMetrics() *AssistantMetrics {
	DefaultMetrics = &AssistantMetrics{
		QueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "queries_total",
				Help:      "Total resolved queries by intent and status",
			},
			[]string{"intent", "status"},
		),

		FallbackDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "fallback_duration_seconds",
				Help:      "Latency of generative fallback calls in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
		),

		ModerationBlocksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "moderation_blocks_total",
				Help:      "Total inputs refused by the moderation gate",
			},
		),

		HistoryTurnsStored: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: assistantSubsystem,
				Name:      "history_turns_stored",
				Help:      "Conversation history length at save time",
				Buckets:   []float64{1, 5, 10, 20, 30, 40, 50},
			},
		),
	}

	return DefaultMetrics
}

// RecordQuery records one resolved query.
func (m *AssistantMetrics) RecordQuery(intent string, success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.QueriesTotal.WithLabelValues(intent, status).Inc()
}

// RecordFallbackDuration records one fallback generation latency.
func (m *AssistantMetrics) RecordFallbackDuration(seconds float64) {
	if m == nil {
		return
	}
	m.FallbackDurationSeconds.Observe(seconds)
}

// RecordModerationBlock records one moderation refusal.
func (m *AssistantMetrics) RecordModerationBlock() {
	if m == nil {
		return
	}
	m.ModerationBlocksTotal.Inc()
}

// RecordHistoryLength records the stored history length for one identity.
func (m *AssistantMetrics) RecordHistoryLength(turns int) {
	if m == nil {
		return
	}
	m.HistoryTurnsStored.Observe(float64(turns))
}
