// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gogama/failover"
	"github.com/gogama/failover/delay"
	"github.com/gogama/failover/endpoint"
	"github.com/gogama/failover/request"
	"github.com/gogama/failover/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	testCases := []struct {
		name     string
		e        *request.Execution
		expected string
	}{
		{"error", &request.Execution{Err: errors.New("x")}, OutcomeError},
		{"429", &request.Execution{Response: &http.Response{StatusCode: 429}}, OutcomeThrottled},
		{"503", &request.Execution{Response: &http.Response{StatusCode: 503}}, OutcomeThrottled},
		{"500", &request.Execution{Response: &http.Response{StatusCode: 500}}, OutcomeServerError},
		{"404", &request.Execution{Response: &http.Response{StatusCode: 404}}, OutcomeClientError},
		{"200", &request.Execution{Response: &http.Response{StatusCode: 200}}, OutcomeSuccess},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Outcome(testCase.e))
		})
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := NewCollector(reg)
	handlers := &failover.HandlerGroup{}
	c.Install(handlers)

	responses := []*http.Response{
		newResponse(503, http.Header{"Retry-After-Ms": {"250"}}),
		newResponse(429, nil),
		newResponse(200, nil),
	}
	calls := 0
	transport := transportFunc(func(_ *http.Request) (*http.Response, error) {
		resp := responses[calls]
		calls++
		return resp, nil
	})
	policy, err := retry.NewPolicy(3, endpoint.MustList("https://a.example.com", "https://b.example.com"),
		retry.ThrottlingRedirect)
	require.NoError(t, err)
	cl := &failover.Client{
		Transport: transport,
		Policy:    policy,
		Scheduler: delay.SchedulerFunc(func(_ context.Context, _ time.Duration) error { return nil }),
		Handlers:  handlers,
	}

	_, err = cl.Get("https://a.example.com/x")

	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(c.attempts.WithLabelValues(OutcomeThrottled)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.attempts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.waits))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.redirects.WithLabelValues("b.example.com")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.executions.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.waitSeconds))

	expected := `
# HELP failover_waits_total Total number of waits before a retry
# TYPE failover_waits_total counter
failover_waits_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "failover_waits_total"))
}

func TestCollector_ExecutionError(t *testing.T) {
	c := NewCollector(nil)
	handlers := &failover.HandlerGroup{}
	c.Install(handlers)
	transport := transportFunc(func(_ *http.Request) (*http.Response, error) {
		return nil, errors.New("unreachable")
	})
	cl := &failover.Client{Transport: transport, Policy: retry.Never, Handlers: handlers}

	_, err := cl.Get("https://a.example.com")

	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.attempts.WithLabelValues(OutcomeError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.executions.WithLabelValues(ResultError)))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.waits))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

type transportFunc func(*http.Request) (*http.Response, error)

func (f transportFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newResponse(code int, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: code,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("")),
	}
}
