// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package delay suspends a request execution between attempts.
//
// A Scheduler waits for a given duration, returning early with the
// context error if the context is done first. The robust client uses
// Default unless told otherwise; tests typically install a
// SchedulerFunc which records the requested delays without sleeping.
package delay
