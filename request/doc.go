// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core types Plan (a logical HTTP request)
and Execution (the state of one run of a Plan, across all of its
attempts).

A Plan describes a logical request which may take several physical
attempts to complete, possibly against different backends. It looks like
a stripped-down http.Request whose body is a pre-buffered []byte, so that
it can be sent again on every attempt:

	p, err := request.NewPlan("GET", "https://east.example.com/v1/items", nil)
	...
	e, err := client.Do(p)

The context of a Plan is the cancellation signal for the whole logical
request. Cancelling it stops the retry loop after the attempt in flight
returns, or interrupts a wait between attempts:

	p, err := request.NewPlanWithContext(ctx, "POST", "https://east.example.com/upload", body)

Between attempts the only field of a Plan which the client changes is
URL, which is replaced when a retry strategy redirects the request to a
different endpoint.

An Execution is created by the client for each call to Do. It carries the
zero-based attempt number, the outcome of the latest attempt (a response
or an error) and a little bookkeeping. It is the input to retry
strategies and event handlers and the output of the client.
*/
package request
