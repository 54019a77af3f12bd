// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

// Package observability provides Prometheus metrics for login attempts.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Outcome labels for login attempts.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeIgnored   = "ignored"
	OutcomeAbandoned = "abandoned"
)

// Metrics contains the login metrics.
type Metrics struct {
	AttemptsTotal    *prometheus.CounterVec
	SubmitDuration   prometheus.Histogram
	FailuresByReason *prometheus.CounterVec
}

// NewMetrics creates and registers the login metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizrush_login_attempts_total",
				Help: "Total number of login submissions by outcome",
			},
			[]string{"outcome"},
		),
		SubmitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quizrush_login_submit_duration_seconds",
				Help:    "Time from submission start to its terminal outcome",
				Buckets: prometheus.DefBuckets,
			},
		),
		FailuresByReason: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizrush_login_failures_total",
				Help: "Total number of failed login submissions by internal reason",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(m.AttemptsTotal)
	reg.MustRegister(m.SubmitDuration)
	reg.MustRegister(m.FailuresByReason)

	return m
}

// RecordAttempt counts one submission. Nil receivers are allowed.
func (m *Metrics) RecordAttempt(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected && outcome != OutcomeIgnored {
		m.SubmitDuration.Observe(elapsed.Seconds())
	}
}

// RecordFailure counts a failed submission by its internal reason.
func (m *Metrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.FailuresByReason.WithLabelValues(reason).Inc()
}

// WriteTextfile writes every metric in g to path in the text exposition
// format, for pickup by a node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return oops.With("path", path).Wrapf(err, "write metrics textfile")
	}
	return nil
}
