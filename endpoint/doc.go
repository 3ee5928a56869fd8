// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package endpoint selects the backend a retried request attempt is
// sent to.
//
// A List holds the base URLs (scheme and host) of interchangeable
// backends. The first entry is the primary. The initial attempt of a
// request always goes to the URL the caller supplied; from the first
// retry onward, List.Next names the backend for each attempt, and
// Rebase moves a request URL onto that backend while keeping its path
// and query intact.
//
//	l, err := endpoint.NewList("https://east.example.com", "https://west.example.com")
//	...
//	base, err := l.Next(1) // west
//	u := endpoint.Rebase(plan.URL, base)
package endpoint
