// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about the executions of a
// failover.Client.
//
// Install a Collector into the client's handler group:
//
//	handlers := &failover.HandlerGroup{}
//	metrics.NewCollector(prometheus.DefaultRegisterer).Install(handlers)
//	client := &failover.Client{Handlers: handlers}
package metrics

import (
	"github.com/gogama/failover"
	"github.com/gogama/failover/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes, used as values of the outcome label.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
	OutcomeThrottled   = "throttled"
	OutcomeError       = "error"
)

// Execution results, used as values of the result label.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// A Collector counts attempts, waits, redirects and executions. It is
// safe for concurrent use by multiple goroutines, so one Collector may
// be installed in many clients.
type Collector struct {
	attempts    *prometheus.CounterVec
	waits       prometheus.Counter
	redirects   *prometheus.CounterVec
	waitSeconds prometheus.Histogram
	executions  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
// If reg is nil, the metrics are not registered anywhere.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failover_attempts_total",
				Help: "Total number of request attempts",
			},
			[]string{"outcome"},
		),
		waits: f.NewCounter(
			prometheus.CounterOpts{
				Name: "failover_waits_total",
				Help: "Total number of waits before a retry",
			},
		),
		redirects: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failover_redirects_total",
				Help: "Total number of retries redirected to another endpoint",
			},
			[]string{"host"},
		),
		waitSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "failover_wait_seconds",
				Help:    "Wait before a retry in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		executions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failover_executions_total",
				Help: "Total number of executions",
			},
			[]string{"result"},
		),
	}
}

// Install adds the collector's handlers to g.
func (c *Collector) Install(g *failover.HandlerGroup) {
	g.PushBack(failover.AfterAttempt, failover.HandlerFunc(c.afterAttempt))
	g.PushBack(failover.BeforeWait, failover.HandlerFunc(c.beforeWait))
	g.PushBack(failover.AfterRedirect, failover.HandlerFunc(c.afterRedirect))
	g.PushBack(failover.AfterExecutionEnd, failover.HandlerFunc(c.afterExecutionEnd))
}

func (c *Collector) afterAttempt(_ failover.Event, e *request.Execution) {
	c.attempts.WithLabelValues(Outcome(e)).Inc()
}

func (c *Collector) beforeWait(_ failover.Event, e *request.Execution) {
	c.waits.Inc()
	c.waitSeconds.Observe(e.Delay.Seconds())
}

func (c *Collector) afterRedirect(_ failover.Event, e *request.Execution) {
	host := ""
	if e.Plan != nil && e.Plan.URL != nil {
		host = e.Plan.URL.Host
	}
	c.redirects.WithLabelValues(host).Inc()
}

func (c *Collector) afterExecutionEnd(_ failover.Event, e *request.Execution) {
	if e.Err != nil {
		c.executions.WithLabelValues(ResultError).Inc()
		return
	}
	c.executions.WithLabelValues(ResultSuccess).Inc()
}

// Outcome classifies the latest attempt of an execution.
func Outcome(e *request.Execution) string {
	switch {
	case e.Err != nil:
		return OutcomeError
	case e.Throttled():
		return OutcomeThrottled
	case e.StatusCode() >= 500:
		return OutcomeServerError
	case e.StatusCode() >= 400:
		return OutcomeClientError
	default:
		return OutcomeSuccess
	}
}
