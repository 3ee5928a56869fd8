// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"fmt"

	"github.com/gogama/failover/endpoint"
	"github.com/gogama/failover/request"
)

// DefaultMaxRetries is the number of retries DefaultPolicy allows.
const DefaultMaxRetries = 3

// A Policy controls if and how retries are done in an execution.
//
// MaxRetries caps the number of retries, so an execution makes at most
// MaxRetries+1 attempts. Strategies is the ordered list of strategies
// consulted after each attempt below the cap. Endpoints lists the
// backends which a redirecting strategy may rotate through.
//
// A Policy must not be modified while any execution is using it. Once
// built, it is safe for concurrent use by multiple goroutines.
type Policy struct {
	MaxRetries int
	Strategies []Strategy
	Endpoints  endpoint.List
}

// DefaultPolicy is a general-purpose retry policy. It allows
// DefaultMaxRetries retries and consults ThrottlingRedirect, then
// DefaultBackoff. It has no endpoints, so throttled responses without
// a retry-after header fall through to the backoff strategy.
var DefaultPolicy = &Policy{
	MaxRetries: DefaultMaxRetries,
	Strategies: []Strategy{ThrottlingRedirect, DefaultBackoff},
}

// Never is a policy that never retries. It is useful if you want to
// use the other features of failover.Client but do not want retries.
var Never = &Policy{}

var (
	errNegativeMaxRetries = errors.New("failover/retry: negative max retries")
	errNoEndpoints        = errors.New("failover/retry: no endpoints")
)

// NewPolicy validates its arguments and builds a Policy from them. The
// endpoint list must not be empty, maxRetries must not be negative, and
// no strategy may be nil. If no strategies are given, the policy never
// retries an attempt, although it still enforces the other checks.
func NewPolicy(maxRetries int, endpoints endpoint.List, strategies ...Strategy) (*Policy, error) {
	if maxRetries < 0 {
		return nil, errNegativeMaxRetries
	}
	if endpoints.Len() < 1 {
		return nil, errNoEndpoints
	}
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("failover/retry: nil strategy at index %d", i)
		}
	}
	p := &Policy{
		MaxRetries: maxRetries,
		Strategies: make([]Strategy, len(strategies)),
		Endpoints:  make(endpoint.List, len(endpoints)),
	}
	copy(p.Strategies, strategies)
	copy(p.Endpoints, endpoints)
	return p, nil
}

// Evaluate asks each strategy in order and returns the first verdict
// which is not a Skip. If every strategy skips, Evaluate returns Skip.
func (p *Policy) Evaluate(e *request.Execution) Verdict {
	for _, s := range p.Strategies {
		if v := s.Evaluate(e); v.Action() != ActionSkip {
			return v
		}
	}
	return Skip()
}
