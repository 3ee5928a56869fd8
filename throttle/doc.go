// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package throttle recognizes HTTP responses in which the server asks
// the client to slow down, and extracts how long the server wants the
// client to wait before trying again.
//
// A response is throttled if its status code is 429 (Too Many Requests)
// or 503 (Service Unavailable). The wait period is read from the first
// valid header among, in order:
//
//	retry-after-ms       milliseconds
//	x-ms-retry-after-ms  milliseconds
//	Retry-After          whole seconds, or an HTTP-date
//
// A throttled response need not carry a valid wait header. RetryAfter
// reports that case with ok == false, leaving it to the caller to decide
// what to do next (for example, fail over to another endpoint).
//
// Like package transient, package throttle depends only on the standard
// library.
package throttle
