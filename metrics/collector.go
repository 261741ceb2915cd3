// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"

	"github.com/gogama/httpcalls"
	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultCall is the call label value of requests without a call name.
const DefaultCall = "default"

// A Collector is an httpcalls.Handler which records Prometheus metrics
// about request executions and their attempts.
//
// All metrics carry a "call" label holding the request call name.
type Collector struct {
	Requests        *prometheus.CounterVec
	Attempts        *prometheus.CounterVec
	AttemptTimeouts *prometheus.CounterVec
	Retries         *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	InFlight        *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers its metrics with reg
// under namespace. A nil reg registers with the Prometheus default
// registerer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of finished requests by call and outcome",
			},
			[]string{"call", "outcome"},
		),
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of request attempts by call and outcome",
			},
			[]string{"call", "outcome"},
		),
		AttemptTimeouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempt_timeouts_total",
				Help:      "Total number of timed out request attempts",
			},
			[]string{"call"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Total number of retries scheduled",
			},
			[]string{"call"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request latency histogram, retries and backoff included",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"call"},
		),
		InFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Current number of requests being executed",
			},
			[]string{"call"},
		),
	}
}

// Install adds c to g for every event.
func (c *Collector) Install(g *httpcalls.HandlerGroup) {
	g.PushBackAll(c)
}

// Handle records the metrics for one engine event.
func (c *Collector) Handle(evt httpcalls.Event, e *request.Execution) {
	call := e.Plan.CallName
	if call == "" {
		call = DefaultCall
	}
	switch evt {
	case httpcalls.BeforeExecutionStart:
		c.InFlight.WithLabelValues(call).Inc()
	case httpcalls.AfterAttempt:
		c.Attempts.WithLabelValues(call, Outcome(e)).Inc()
	case httpcalls.AfterAttemptTimeout:
		c.AttemptTimeouts.WithLabelValues(call).Inc()
	case httpcalls.BeforeBackoff:
		c.Retries.WithLabelValues(call).Inc()
	case httpcalls.AfterExecutionEnd:
		c.InFlight.WithLabelValues(call).Dec()
		c.Requests.WithLabelValues(call, Outcome(e)).Inc()
		c.Duration.WithLabelValues(call).Observe(e.Duration().Seconds())
	}
}

// Outcome labels the current state of e: the lower-case error kind,
// or the status code for a response or an HTTP error.
func Outcome(e *request.Execution) string {
	if e.Err != nil && !httperr.Is(e.Err, httperr.HTTP) {
		return kindLabel(httperr.KindOf(e.Err))
	}
	if code := e.StatusCode(); code != 0 {
		return strconv.Itoa(code)
	}
	return "unknown"
}

func kindLabel(k httperr.Kind) string {
	switch k {
	case httperr.Network:
		return "network"
	case httperr.Timeout:
		return "timeout"
	case httperr.InvalidURL:
		return "invalid_url"
	case httperr.Serialization:
		return "serialization"
	case httperr.HTTP:
		return "http"
	case httperr.Cancelled:
		return "cancelled"
	case httperr.InvalidResponse:
		return "invalid_response"
	case httperr.Configuration:
		return "configuration"
	default:
		return "unknown"
	}
}
