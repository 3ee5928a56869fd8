// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/failover/request"
	"github.com/gogama/failover/throttle"
)

// A Waiter chooses how long a backoff strategy waits before the next
// retry. Implementations must be safe for concurrent use.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// DefaultWaiter is the Waiter used by DefaultBackoff: full-jitter
// exponential backoff from 50ms up to 1s.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, time.Second, rand.NewSource(time.Now().UnixNano()))

// NewFixedWaiter returns a Waiter that always waits d.
func NewFixedWaiter(d time.Duration) Waiter {
	return fixedWaiter(d)
}

type fixedWaiter time.Duration

func (w fixedWaiter) Wait(_ *request.Execution) time.Duration {
	return time.Duration(w)
}

// NewExpWaiter returns a Waiter whose ceiling doubles with every
// attempt, starting at base and capped at max.
//
// If src is nil the waiter returns the ceiling itself. Otherwise it
// returns a uniformly random duration in [0, ceiling) drawn from src
// ("full jitter").
//
// NewExpWaiter panics unless 0 < base <= max.
func NewExpWaiter(base, max time.Duration, src rand.Source) Waiter {
	if base <= 0 {
		panic("failover/retry: base must be positive")
	}
	if max < base {
		panic("failover/retry: max must be at least base")
	}

	w := &expWaiter{base: base, max: max}
	if src != nil {
		w.rand = rand.New(src)
	}
	return w
}

type expWaiter struct {
	base, max time.Duration

	mu   sync.Mutex
	rand *rand.Rand
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	ceil := w.ceiling(e.Attempt)
	if w.rand == nil {
		return ceil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Duration(w.rand.Int63n(int64(ceil)))
}

func (w *expWaiter) ceiling(attempt int) time.Duration {
	d := w.base
	for i := 0; i < attempt; i++ {
		if d > w.max/2 {
			return w.max
		}
		d *= 2
	}
	if d > w.max {
		return w.max
	}
	return d
}

// NewRetryAfterWaiter returns a Waiter that waits as long as the
// latest response's retry-after-ms, x-ms-retry-after-ms or Retry-After
// header asks, and defers to fallback when there is no usable header.
func NewRetryAfterWaiter(fallback Waiter) Waiter {
	if fallback == nil {
		panic("failover/retry: nil fallback waiter")
	}
	return retryAfterWaiter{fallback: fallback}
}

type retryAfterWaiter struct {
	fallback Waiter
}

func (w retryAfterWaiter) Wait(e *request.Execution) time.Duration {
	if e.Response != nil {
		if d, ok := throttle.RetryAfter(e.Response.Header); ok {
			return d
		}
	}
	return w.fallback.Wait(e)
}
