// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package endpoint

import (
	"errors"
	"fmt"
	urlpkg "net/url"
)

var (
	// ErrEmpty is returned when an operation needs at least one endpoint
	// but the list is empty.
	ErrEmpty = errors.New("failover/endpoint: empty endpoint list")
	// ErrNoRotation is returned by List.Next for attempt 0. The initial
	// attempt always targets the caller's own URL.
	ErrNoRotation = errors.New("failover/endpoint: no rotation on initial attempt")
	// ErrNegativeAttempt is returned by List.Next for a negative attempt.
	ErrNegativeAttempt = errors.New("failover/endpoint: negative attempt")
)

// A List is an ordered list of backend base URLs. Entry 0 is the
// primary endpoint.
//
// A List is read-only once built and is safe for concurrent use by
// multiple goroutines.
type List []*urlpkg.URL

// NewList parses each base URL and returns them as a List. Every base
// must be an absolute URL with a scheme and host; anything after the
// host is ignored by Rebase.
func NewList(bases ...string) (List, error) {
	if len(bases) == 0 {
		return nil, ErrEmpty
	}

	l := make(List, len(bases))
	for i, base := range bases {
		u, err := urlpkg.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("failover/endpoint: invalid endpoint %q: %w", base, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("failover/endpoint: endpoint %q must have a scheme and host", base)
		}
		l[i] = u
	}

	return l, nil
}

// MustList is like NewList but panics if the list cannot be built. It
// is intended for package-level variables and tests.
func MustList(bases ...string) List {
	l, err := NewList(bases...)
	if err != nil {
		panic(err)
	}

	return l
}

// Len returns the number of endpoints in the list.
func (l List) Len() int {
	return len(l)
}

// Next returns the endpoint that attempt number attempt (zero-based)
// should be sent to.
//
// No rotation happens on the initial attempt, so Next returns
// ErrNoRotation for attempt 0. For attempt > 0 the index is
//
//	attempt mod len(l) + 1
//
// which skips the primary on rotation. When that index falls past the
// end of the list it wraps to 1 mod len(l): with two endpoints every
// retry goes to the second one, and with a single endpoint every retry
// goes back to it.
func (l List) Next(attempt int) (*urlpkg.URL, error) {
	switch {
	case len(l) == 0:
		return nil, ErrEmpty
	case attempt < 0:
		return nil, ErrNegativeAttempt
	case attempt == 0:
		return nil, ErrNoRotation
	}

	return l[l.index(attempt)], nil
}

func (l List) index(attempt int) int {
	n := len(l)
	i := attempt%n + 1
	if i >= n {
		i = 1 % n
	}
	return i
}

// Strings returns the endpoints in their string form.
func (l List) Strings() []string {
	s := make([]string, len(l))
	for i, u := range l {
		s[i] = u.String()
	}
	return s
}

// Rebase returns a copy of u moved onto base: the scheme, user info
// and host come from base, while the path, query and fragment of u are
// preserved. Neither argument is modified.
func Rebase(u, base *urlpkg.URL) *urlpkg.URL {
	u2 := *u
	u2.Scheme = base.Scheme
	u2.Host = base.Host
	u2.User = base.User
	u2.Opaque = ""
	return &u2
}
