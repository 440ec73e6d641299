// Copyright 2025 The edgefilter Authors. SPDX-License-Identifier: Apache-2.0

// Package metrics records filter run timings and verification outcomes in a
// private Prometheus registry.
//
// A Recorder is independent of the global default registry, so several
// pipelines (or tests) can record side by side. WriteText dumps the
// registry in the Prometheus text exposition format, which is what the CLI
// prints with --metrics.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder collects run metrics. The zero value is not usable; call New.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	leaves   *prometheus.CounterVec
	rows     *prometheus.CounterVec
	verified *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edgefilter",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one filter run.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"filter", "strategy"}),
		leaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edgefilter",
			Name:      "leaf_invocations_total",
			Help:      "Row-range applier invocations.",
		}, []string{"filter", "strategy"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edgefilter",
			Name:      "rows_total",
			Help:      "Rows scheduled for filtering.",
		}, []string{"filter", "strategy"}),
		verified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edgefilter",
			Name:      "verifications_total",
			Help:      "Comparisons against the serial output, by result.",
		}, []string{"filter", "strategy", "result"}),
	}
	r.registry.MustRegister(r.duration, r.leaves, r.rows, r.verified)
	return r
}

// Registry returns the registry backing r.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one completed run.
func (r *Recorder) Observe(filter, strategy string, d time.Duration, rows int, leaves int64) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(filter, strategy).Observe(d.Seconds())
	r.rows.WithLabelValues(filter, strategy).Add(float64(rows))
	r.leaves.WithLabelValues(filter, strategy).Add(float64(leaves))
}

// Verified records the outcome of comparing a run against the serial
// output.
func (r *Recorder) Verified(filter, strategy string, pass bool) {
	if r == nil {
		return
	}
	result := "fail"
	if pass {
		result = "pass"
	}
	r.verified.WithLabelValues(filter, strategy, result).Inc()
}

// WriteText writes every metric in the text exposition format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
