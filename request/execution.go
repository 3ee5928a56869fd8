// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/failover/endpoint"
	"github.com/gogama/failover/throttle"
	"github.com/gogama/failover/transient"
)

// An Execution represents the state of a single Plan execution.
//
// The client creates an Execution at the start of each call to Do,
// updates it as attempts complete, passes it to retry strategies and
// event handlers, and finally returns it to the caller.
//
// Strategies and handlers may store their own data on an Execution
// using SetValue and read it back with Value, but should otherwise
// treat the exported fields as read-only.
type Execution struct {
	// Plan specifies the plan being executed. It is never nil.
	Plan *Plan

	// ID uniquely identifies the execution, for example to correlate
	// log lines written during different attempts.
	ID string

	// Endpoints lists the backends a retry may be redirected to. It is
	// copied from the retry policy and is read-only for the duration
	// of the execution. It may be empty.
	Endpoints endpoint.List

	// Start is the start time of the execution.
	Start time.Time

	// End is the end time of the execution, or the zero value while
	// the execution is in flight.
	End time.Time

	// Attempt is the zero-based number of the current attempt: zero
	// on the initial attempt, one on the first retry, and so on. When
	// the execution has ended, it holds the number of the last attempt.
	Attempt int

	// Waits counts the retries which were preceded by a wait.
	Waits int

	// Redirects counts the retries which were sent to a different
	// endpoint.
	Redirects int

	// Delay is the wait chosen before the next retry. It is set just
	// before the BeforeWait event and reset when the next attempt
	// starts.
	Delay time.Duration

	// Request is the HTTP request sent in the current or most recent
	// attempt.
	Request *http.Request

	// Response is the HTTP response received in the most recent
	// attempt. It is nil if that attempt ended in a transport error,
	// while an attempt is underway, and before the execution starts.
	Response *http.Response

	// Err is the error from the most recent attempt, or the terminal
	// error of the whole execution once it has ended. Transport errors
	// have type *url.Error.
	//
	// Once the execution has ended, Err is the same error value the
	// client's Do method returned.
	Err error

	// Body is the fully-read response body of the most recent attempt.
	// It is nil if the attempt ended in error before a response was
	// received.
	Body []byte

	data context.Context
}

// StatusCode returns the status code of the most recent HTTP response,
// or 0 if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the headers of the most recent HTTP response, or nil
// if there is none. A nil header is safe for reads.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Throttled reports whether the most recent HTTP response asked the
// client to slow down (status 429 or 503).
func (e *Execution) Throttled() bool {
	return throttle.IsThrottled(e.Response)
}

// Duration returns the duration of the execution: zero before it
// starts, the time elapsed since Start while it is in flight, and End
// minus Start once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout indicates whether Err currently holds a timeout error.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue stores arbitrary data on the execution. The key must follow
// the rules for keys given to context.WithValue: non-nil, comparable,
// and preferably of an unexported type.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value stored on the execution for key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
