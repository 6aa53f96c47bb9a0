// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package download

import (
	"github.com/prometheus/client_golang/prometheus"
)

var defaultBuckets = []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000}

const (
	segTransfersName = "segment_transfers_total"
	segBytesName     = "segment_bytes_total"
	segLatencyName   = "segment_transfer_duration_milliseconds"
	service          = "dashfetcher"
)

// Metrics counts transfers by role and state.
type Metrics struct {
	transfers *prometheus.CounterVec
	bytes     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// NewMetrics registers the transfer metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		transfers: newCounter(reg, segTransfersName,
			"Number of segment transfers, partitioned by role and state.", service),
		bytes: newCounter(reg, segBytesName,
			"Number of bytes stored, partitioned by role and state.", service),
		latency: newHistogram(reg, segLatencyName,
			"Segment transfer latency.", service, defaultBuckets),
	}
}

// Done implements Observer.
func (m *Metrics) Done(r Report) {
	role := r.Descriptor.Role.String()
	state := r.State.String()
	if r.Skipped {
		state = "skipped"
	}
	m.transfers.WithLabelValues(role, state).Inc()
	m.bytes.WithLabelValues(role, state).Add(float64(r.Bytes))
	if !r.Skipped {
		m.latency.WithLabelValues(role, state).Observe(float64(r.Duration.Nanoseconds()) * 1e-6)
	}
}

func newCounter(reg prometheus.Registerer, counterName, help, serviceName string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        counterName,
			Help:        help,
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
		[]string{"role", "state"},
	)
	reg.MustRegister(cv)
	return cv
}

func newHistogram(reg prometheus.Registerer, histogramName, help, serviceName string, buckets []float64) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        histogramName,
		Help:        help,
		ConstLabels: prometheus.Labels{"service": serviceName},
		Buckets:     buckets,
	},
		[]string{"role", "state"},
	)
	reg.MustRegister(h)
	return h
}
