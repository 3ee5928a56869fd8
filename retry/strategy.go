// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gogama/failover/endpoint"
	"github.com/gogama/failover/request"
	"github.com/gogama/failover/throttle"
)

// A Strategy looks at the outcome of the latest attempt in an execution
// and returns a Verdict.
//
// A Policy holds an ordered list of strategies. After every attempt
// which may be retried, the client asks each strategy in turn and acts
// on the first verdict which is not a Skip.
//
// Implementations of Strategy must be safe for concurrent use by
// multiple goroutines, and must not modify the execution.
type Strategy interface {
	Evaluate(e *request.Execution) Verdict
}

// The StrategyFunc type is an adapter to allow the use of ordinary
// functions as retry strategies.
type StrategyFunc func(e *request.Execution) Verdict

// Evaluate returns f(e).
func (f StrategyFunc) Evaluate(e *request.Execution) Verdict {
	return f(e)
}

// ThrottlingRedirect is a strategy for backends which throttle.
//
// If the latest response is not throttled (see throttle.IsThrottled),
// the verdict is Skip. If the response says how long to back off, the
// verdict is a Wait for that long. Otherwise the request is redirected
// to the next endpoint in the execution's endpoint list, keeping the
// path and query of the current URL. If there is no endpoint to rotate
// to, the verdict is Skip.
var ThrottlingRedirect = NewThrottlingRedirect(throttle.Detector{})

// NewThrottlingRedirect constructs a ThrottlingRedirect strategy whose
// retry-after headers are parsed by d.
func NewThrottlingRedirect(d throttle.Detector) Strategy {
	return StrategyFunc(func(e *request.Execution) Verdict {
		throttled, wait, ok := d.Classify(e.Response)
		if !throttled {
			return Skip()
		}
		if ok {
			return Wait(wait)
		}
		if e.Plan == nil || e.Plan.URL == nil {
			return Skip()
		}
		next, err := e.Endpoints.Next(e.Attempt + 1)
		if err != nil {
			return Skip()
		}
		return Redirect(endpoint.Rebase(e.Plan.URL, next))
	})
}

// DefaultBackoff is a general-purpose backoff strategy composed of
// DefaultDecider and DefaultWaiter.
var DefaultBackoff = NewBackoff(DefaultDecider, DefaultWaiter)

type backoff struct {
	decider Decider
	waiter  Waiter
}

// NewBackoff composes a Decider and a Waiter into a Strategy. The
// strategy's verdict is a Wait for w.Wait(e) if d.Decide(e) is true,
// and Skip otherwise.
func NewBackoff(d Decider, w Waiter) Strategy {
	if d == nil {
		panic("failover/retry: nil decider")
	}
	if w == nil {
		panic("failover/retry: nil waiter")
	}
	return backoff{decider: d, waiter: w}
}

func (b backoff) Evaluate(e *request.Execution) Verdict {
	if !b.decider.Decide(e) {
		return Skip()
	}
	d := b.waiter.Wait(e)
	if d < 0 {
		d = 0
	}
	return Wait(d)
}
