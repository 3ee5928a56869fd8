// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package failover provides an HTTP client which retries failed and
throttled requests, either waiting between attempts or failing over to
a different backend endpoint.

Create a Client to begin making requests. The zero value retries using
retry.DefaultPolicy:

	client := &failover.Client{}
	e, err := client.Get("https://east.example.com/v1/items")
	...
	e, err := client.Post("https://east.example.com/v1/items",
		"application/json", body)

To fail over between backends, give the client a retry policy with an
endpoint list. When a backend throttles without saying how long to back
off, the next attempt is sent to another endpoint with the same path and
query:

	endpoints := endpoint.MustList("https://east.example.com", "https://west.example.com")
	policy, err := retry.NewPolicy(3, endpoints, retry.ThrottlingRedirect, retry.DefaultBackoff)
	...
	client := &failover.Client{
		Policy: policy,
		Logger: slog.Default(),
	}

The Transport sends the individual attempts. Use any http.Client:

	client := &failover.Client{
		Transport: &http.Client{Timeout: 5 * time.Second},
	}

To hook into the attempt loop, install a handler into the appropriate
handler chain. Package metrics uses this to export Prometheus metrics:

	handlers := &failover.HandlerGroup{}
	handlers.PushBack(failover.AfterRedirect, failover.HandlerFunc(
		func(_ failover.Event, e *request.Execution) {
			fmt.Println("redirected to", e.Plan.URL)
		}))
	client := &failover.Client{Handlers: handlers}
*/
package failover
