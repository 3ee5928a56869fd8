// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides, after each attempt of an execution, whether
// the client should wait and retry, redirect the request to another
// endpoint, give up with an error, or return what it has.
//
// A Policy caps the number of retries and holds an ordered list of
// Strategy values. After an attempt below the cap, the client asks each
// strategy in turn and acts on the first Verdict which is not a Skip:
//
//	endpoints := endpoint.MustList("https://east.example.com", "https://west.example.com")
//	policy, err := retry.NewPolicy(3, endpoints,
//		retry.ThrottlingRedirect,
//		retry.NewBackoff(
//			retry.StatusCode(500, 502).Or(retry.TransientErr),
//			retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, rand.NewSource(1))))
//
// Backoff strategies are assembled from a decision-maker, Decider, and
// a wait time calculator, Waiter. Both have constructors for common use
// cases. Fully custom behaviour can be had by implementing Strategy, or
// by wrapping a function in StrategyFunc.
package retry
