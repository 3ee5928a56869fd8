// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package throttle

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names consulted by RetryAfter, in precedence order.
const (
	RetryAfterMsHeader    = "Retry-After-Ms"
	XMsRetryAfterMsHeader = "X-Ms-Retry-After-Ms"
	RetryAfterHeader      = "Retry-After"
)

const maxDuration = time.Duration(math.MaxInt64)

// IsThrottled reports whether resp is a throttling response, that is,
// whether its status code is 429 or 503. The headers are not examined,
// and a nil response is never throttled.
func IsThrottled(resp *http.Response) bool {
	if resp == nil {
		return false
	}

	return resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusServiceUnavailable
}

// RetryAfter returns the wait period requested by the headers h, using
// the current time to resolve HTTP-date values. See Detector.RetryAfter.
func RetryAfter(h http.Header) (time.Duration, bool) {
	return Detector{}.RetryAfter(h)
}

// Classify combines IsThrottled and RetryAfter. If resp is not
// throttled, the headers are not examined and the return value is
// (false, 0, false).
func Classify(resp *http.Response) (throttled bool, wait time.Duration, ok bool) {
	return Detector{}.Classify(resp)
}

// A Detector extracts wait periods from response headers. Its zero
// value is ready to use and resolves HTTP-dates against time.Now.
type Detector struct {
	// Now returns the current time. If Now is nil, time.Now is used.
	Now func() time.Time
}

// RetryAfter returns the wait period requested by the headers h.
//
// The headers are tried in the fixed order retry-after-ms,
// x-ms-retry-after-ms, Retry-After, and the first header holding a
// valid value wins. Header names are matched case-insensitively. An
// invalid value is skipped as though the header were absent.
//
// A Retry-After value which is not a number is parsed as an HTTP-date,
// and the wait is the time remaining until that date, or zero if the
// date is in the past.
//
// The second return value is false if no header yields a valid value.
// A zero wait with ok == true is a valid instruction to retry at once.
func (d Detector) RetryAfter(h http.Header) (time.Duration, bool) {
	now := d.now()
	for _, p := range parsers {
		v, present := lookup(h, p.header)
		if !present {
			continue
		}
		if wait, ok := p.parse(v, now); ok {
			return wait, true
		}
	}

	return 0, false
}

// Classify combines IsThrottled and d.RetryAfter.
func (d Detector) Classify(resp *http.Response) (throttled bool, wait time.Duration, ok bool) {
	if !IsThrottled(resp) {
		return false, 0, false
	}

	wait, ok = d.RetryAfter(resp.Header)
	return true, wait, ok
}

func (d Detector) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}

	return d.Now()
}

type parser struct {
	header string
	parse  func(v string, now time.Time) (time.Duration, bool)
}

var parsers = []parser{
	{RetryAfterMsHeader, parseMillis},
	{XMsRetryAfterMsHeader, parseMillis},
	{RetryAfterHeader, parseSecondsOrDate},
}

func parseMillis(v string, _ time.Time) (time.Duration, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}

	return scale(f, time.Millisecond)
}

func parseSecondsOrDate(v string, now time.Time) (time.Duration, bool) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return scale(f, time.Second)
	}

	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}

	wait := t.Sub(now)
	if wait < 0 {
		wait = 0
	}

	return wait, true
}

func scale(f float64, unit time.Duration) (time.Duration, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}

	x := f * float64(unit)
	if x >= float64(maxDuration) {
		return maxDuration, true
	}

	return time.Duration(x), true
}

// lookup finds the first non-empty value of the named header. It tries
// the canonical key first, then falls back to a case-insensitive scan so
// that headers stored under non-canonical keys are still found.
func lookup(h http.Header, name string) (string, bool) {
	if v := strings.TrimSpace(h.Get(name)); v != "" {
		return v, true
	}

	for k, vs := range h {
		if len(vs) > 0 && strings.EqualFold(k, name) {
			if v := strings.TrimSpace(vs[0]); v != "" {
				return v, true
			}
		}
	}

	return "", false
}
