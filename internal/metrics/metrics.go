// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exports DTA decoding statistics as prometheus metrics.
package metrics // import "github.com/go-lpc/aewin/internal/metrics"

import (
	"time"

	"github.com/go-lpc/aewin/dta"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// Metrics bundles the decoding metrics of DTA sessions, labeled by session.
// Metrics values are safe for concurrent use.
type Metrics struct {
	reg *prometheus.Registry

	Files         *prometheus.CounterVec
	Frames        *prometheus.CounterVec
	Bytes         *prometheus.CounterVec
	Events        *prometheus.CounterVec // labeled by session and event kind
	Skipped       *prometheus.CounterVec
	Unknown       *prometheus.CounterVec
	Continuations *prometheus.CounterVec
	Controls      *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	Duration      prometheus.Histogram
}

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	if len(labels) == 0 {
		labels = []string{"session"}
	}
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dta",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// New constructs the decoding metrics and registers them with
// a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		reg:           prometheus.NewRegistry(),
		Files:         counter("files_total", "Total DTA files opened."),
		Frames:        counter("frames_total", "Total DTA frames read."),
		Bytes:         counter("bytes_total", "Total bytes read from DTA files."),
		Events:        counter("events_total", "Total decoded events by kind.", "session", "kind"),
		Skipped:       counter("skipped_frames_total", "Data frames consumed without producing an event."),
		Unknown:       counter("unknown_messages_total", "Messages and sub-messages with an unknown identifier."),
		Continuations: counter("continuations_total", "Continued-file markers."),
		Controls:      counter("test_controls_total", "Resume, stop and pause markers."),
		Failures:      counter("failures_total", "Sessions whose decoding failed."),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dta",
			Name:      "session_duration_seconds",
			Help:      "Time spent decoding a session.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
	}
	m.reg.MustRegister(
		m.Files,
		m.Frames,
		m.Bytes,
		m.Events,
		m.Skipped,
		m.Unknown,
		m.Continuations,
		m.Controls,
		m.Failures,
		m.Duration,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Observe records the statistics of a decoded session.
func (m *Metrics) Observe(session string, st dta.Stats, elapsed time.Duration) {
	m.Files.WithLabelValues(session).Add(float64(st.Files))
	m.Frames.WithLabelValues(session).Add(float64(st.Frames))
	m.Bytes.WithLabelValues(session).Add(float64(st.Bytes))
	m.Events.WithLabelValues(session, dta.HitEvent.String()).Add(float64(st.Hits))
	m.Events.WithLabelValues(session, dta.TimeDrivenEvent.String()).Add(float64(st.TimeDriven))
	m.Events.WithLabelValues(session, dta.WaveformEvent.String()).Add(float64(st.Waveforms))
	m.Skipped.WithLabelValues(session).Add(float64(st.Skipped))
	m.Unknown.WithLabelValues(session).Add(float64(st.Unknown))
	m.Continuations.WithLabelValues(session).Add(float64(st.Continuations))
	m.Controls.WithLabelValues(session).Add(float64(st.Controls))
	m.Duration.Observe(elapsed.Seconds())
}

// Fail records a session whose decoding failed.
func (m *Metrics) Fail(session string) {
	m.Failures.WithLabelValues(session).Inc()
}

// WriteFile writes the metrics to the named file, in the prometheus
// text exposition format.
func (m *Metrics) WriteFile(fname string) error {
	err := prometheus.WriteToTextfile(fname, m.reg)
	if err != nil {
		return xerrors.Errorf("metrics: could not write %q: %w", fname, err)
	}
	return nil
}
