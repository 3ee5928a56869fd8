// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/failover/request"
	"github.com/gogama/failover/transient"
)

// A Decider decides if a backoff strategy should retry.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, StatusCode, and Before, and the
// built-in decider TransientErr; or implement your own Decider. Use
// DeciderFunc to convert an ordinary function into a Decider, and to
// compose deciders logically using DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
type DeciderFunc func(e *request.Execution) bool

// DefaultDecider is the decider used by DefaultBackoff. It asks for a
// retry when the latest attempt ended with a transient error
// (TransientErr) or with one of the status codes 408 (Request Timeout),
// 429 (Too Many Requests), 500 (Internal Server Error), 502 (Bad
// Gateway), 503 (Service Unavailable) or 504 (Gateway Timeout).
//
// DefaultDecider does not count attempts. The number of retries is
// capped by Policy.MaxRetries.
var DefaultDecider = StatusCode(DefaultStatusCodes...).Or(TransientErr)

// DefaultStatusCodes lists the HTTP status codes DefaultDecider retries.
// Treat it as read-only.
var DefaultStatusCodes = []int{408, 429, 500, 502, 503, 504}

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it returns false when a
// valid HTTP response was received.
var TransientErr DeciderFunc = transientErr

// Decide returns f(e).
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into a new decider which returns true if
// both sub-deciders return true. Short-circuit logic is used, so g is
// not evaluated if f returns false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into a new decider which returns true if
// either sub-decider returns true. Short-circuit logic is used, so g is
// not evaluated if f returns true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a decider which allows up to n retries. It returns
// true while e.Attempt is less than n.
//
// Times is useful to give one strategy fewer retries than the policy's
// MaxRetries.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before constructs a decider allowing retries until d has elapsed
// since the start of the execution.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// StatusCode constructs a decider which returns true if the latest
// attempt received an HTTP response whose status code is in ss.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func transientErr(e *request.Execution) bool {
	return transient.IsTransient(e.Err)
}
