// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"fmt"
	"net/url"
	"time"
)

// An Action identifies what a Verdict tells the client to do next.
type Action int

const (
	// ActionSkip means the strategy has no opinion. The client asks
	// the next strategy, or ends the execution if there is none.
	ActionSkip Action = iota
	// ActionThrow means the execution must end with the verdict's
	// error.
	ActionThrow
	// ActionWait means the client should wait for the verdict's delay
	// and then retry against the same URL.
	ActionWait
	// ActionRedirect means the client should retry immediately against
	// the verdict's URL.
	ActionRedirect
)

var actionNames = []string{
	"Skip",
	"Throw",
	"Wait",
	"Redirect",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}

	return actionNames[a]
}

// A Verdict is the decision a Strategy reaches after looking at the
// outcome of an attempt.
//
// A Verdict carries exactly one of the four actions and only the
// payload that action needs. The zero value is a Skip verdict. Use the
// constructors Skip, Throw, Wait and Redirect to create verdicts.
type Verdict struct {
	action Action
	err    error
	delay  time.Duration
	url    *url.URL
}

// Skip returns a verdict deferring the decision to the next strategy.
func Skip() Verdict {
	return Verdict{}
}

// Throw returns a verdict ending the execution with err, which is
// returned verbatim to the caller. Throw panics if err is nil.
func Throw(err error) Verdict {
	if err == nil {
		panic("failover/retry: nil error")
	}

	return Verdict{action: ActionThrow, err: err}
}

// Wait returns a verdict retrying the request after waiting for d. A
// zero duration retries immediately. Wait panics if d is negative.
func Wait(d time.Duration) Verdict {
	if d < 0 {
		panic("failover/retry: negative wait")
	}

	return Verdict{action: ActionWait, delay: d}
}

// Redirect returns a verdict retrying the request against u without
// waiting. Redirect panics if u is nil.
func Redirect(u *url.URL) Verdict {
	if u == nil {
		panic("failover/retry: nil redirect URL")
	}

	return Verdict{action: ActionRedirect, url: u}
}

// Action returns the action carried by the verdict.
func (v Verdict) Action() Action {
	return v.action
}

// Err returns the error of a Throw verdict, or nil.
func (v Verdict) Err() error {
	return v.err
}

// Delay returns the wait duration of a Wait verdict, or zero.
func (v Verdict) Delay() time.Duration {
	return v.delay
}

// URL returns the target of a Redirect verdict, or nil.
func (v Verdict) URL() *url.URL {
	return v.url
}

func (v Verdict) String() string {
	switch v.action {
	case ActionThrow:
		return fmt.Sprintf("Throw(%v)", v.err)
	case ActionWait:
		return fmt.Sprintf("Wait(%s)", v.delay)
	case ActionRedirect:
		return fmt.Sprintf("Redirect(%s)", v.url)
	default:
		return v.action.String()
	}
}
