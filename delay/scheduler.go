// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package delay

import (
	"context"
	"time"
)

// A Scheduler suspends the calling goroutine for a duration.
//
// Wait must return nil once d has elapsed, or ctx.Err() if ctx is done
// before then, whichever happens first. It must not busy-wait.
//
// Implementations of Scheduler must be safe for concurrent use by
// multiple goroutines.
type Scheduler interface {
	Wait(ctx context.Context, d time.Duration) error
}

// The SchedulerFunc type is an adapter to allow the use of ordinary
// functions as schedulers.
type SchedulerFunc func(ctx context.Context, d time.Duration) error

// Wait calls f(ctx, d).
func (f SchedulerFunc) Wait(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// Default is the timer-based Scheduler.
var Default Scheduler = SchedulerFunc(Wait)

// Wait suspends the calling goroutine for d, or until ctx is done.
//
// If ctx is already done, Wait returns ctx.Err() immediately, even if d
// is not positive. A non-positive d otherwise returns nil at once.
func Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
