// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	nilCtxMsg = "failover/request: nil context"
)

// A Plan is a logical HTTP request to be executed, possibly over
// several attempts, by the robust client.
//
// A Plan has a context which controls the overall execution and can be
// used to cancel it at any time.
//
// During an execution the client may replace URL, for example to send a
// retry to a different backend. Every other field is left untouched.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL specifies the URL to access. Its scheme and host select the
	// backend; when a retry is redirected, the client replaces URL
	// with a copy pointing at another backend with the same path and
	// query.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent on every
	// attempt. Keys are case-insensitive, as with http.Header.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body
	// indicates no request body should be sent.
	Body []byte

	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a new Plan given a method, URL, and
// optional body.
//
// Parameter body may be nil (empty body), or any of the types accepted
// by BodyBytes.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("failover/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
	}, nil
}

// Context returns the plan's context, which is never nil. To change
// the context, use WithContext.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// ToRequest creates the HTTP request for one attempt of the plan. The
// new request uses the plan's context and current URL, and gets its own
// copy of the header so that changes made to one attempt's request do
// not leak into the next.
//
// An error is returned if a header field name is not a valid HTTP
// token.
func (p *Plan) ToRequest() (*http.Request, error) {
	if p.URL == nil {
		return nil, errors.New("failover/request: nil URL")
	}
	method := p.Method
	if method == "" {
		method = "GET"
	}
	var body io.Reader
	if len(p.Body) > 0 {
		body = bytes.NewReader(p.Body)
	}
	r, err := http.NewRequestWithContext(p.Context(), method, "", body)
	if err != nil {
		return nil, err
	}
	for k := range p.Header {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("failover/request: invalid header field name %q", k)
		}
	}
	r.URL = p.URL
	r.Host = p.URL.Host
	r.Header = p.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return r, nil
}

func validMethod(method string) bool {
	return len(method) > 0 && strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
