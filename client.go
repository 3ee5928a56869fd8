// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failover

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/failover/delay"
	"github.com/gogama/failover/request"
	"github.com/gogama/failover/retry"
	"github.com/google/uuid"
)

// A Transport sends one HTTP request and returns its response in the
// same manner as the GoLang standard library http.Client from the
// net/http package.
//
// A Transport must not retry on its own: every retry, wait and redirect
// is decided by the Client's retry policy.
type Transport interface {
	Do(r *http.Request) (*http.Response, error)
}

// ErrNoOutcome is returned when an execution reaches the retry limit
// but its final attempt produced neither a response nor an error. This
// can only happen when an event handler clears both.
var ErrNoOutcome = errors.New("failover: final attempt has no outcome")

var (
	emptyHandlers = HandlerGroup{}
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// A Client is an HTTP client which retries failed and throttled
// requests, waiting between attempts or failing over to another
// endpoint as its retry policy decides. Its zero value is a valid
// configuration.
//
// The zero value client uses http.DefaultClient as the Transport,
// retry.DefaultPolicy as the retry policy, delay.Default to wait
// between attempts, no event handlers, and no logging.
//
// A Client is safe for concurrent use by multiple goroutines, provided
// its fields are not changed while it is in use.
//
// Compared with the Go standard HTTP client, the main differences are:
//
// • Client.Do consumes a request.Plan, which can be sent as many times
// as needed, instead of an http.Request; and
//
// • all of Client's HTTP methods return a request.Execution, which
// holds the fully-buffered response body and metadata about all the
// attempts made, instead of an http.Response.
type Client struct {
	// Transport sends the individual request attempts.
	//
	// If Transport is nil, http.DefaultClient is used.
	Transport Transport
	// Policy caps the number of retries and holds the ordered retry
	// strategies and the failover endpoints.
	//
	// If Policy is nil, retry.DefaultPolicy is used.
	Policy *retry.Policy
	// Scheduler waits between attempts.
	//
	// If Scheduler is nil, delay.Default is used.
	Scheduler delay.Scheduler
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during an execution.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Logger receives a structured record of each attempt, wait,
	// redirect and failure. Records carry the attribute execution_id
	// so that all the lines written for one execution can be grouped.
	//
	// If Logger is nil, nothing is logged.
	Logger *slog.Logger
}

// Do executes a request plan, retrying as the client's retry policy
// decides, and returns the results.
//
// Each attempt sends a fresh HTTP request built from the plan and reads
// the whole response body. After an attempt:
//
// • if the plan's context is done, the execution fails with the
// context's error, returned unwrapped;
//
// • if the policy's MaxRetries has been reached, the execution ends
// with the final attempt's error if there is one, and otherwise with
// its response;
//
// • otherwise the policy's strategies are consulted in order, and the
// first verdict that is not a Skip decides: Throw ends the execution
// with the verdict's error, Wait sleeps and retries, and Redirect
// replaces the plan's URL and retries at once. If every strategy
// skips, the execution ends with the attempt's outcome.
//
// A Redirect verdict changes p.URL, so after Do returns, p.URL is the
// URL of the final attempt.
//
// Errors from the Transport, and from reading the body, are returned
// as *url.Error. A non-2XX status code in the final attempt does not
// result in an error.
//
// The returned Execution is never nil. If an error is returned, the
// Err field of the execution references the same error. If the error
// is nil, the execution contains a non-nil Response and Body.
func (c *Client) Do(p *request.Plan) (*request.Execution, error) {
	transport := c.transport()

	policy := c.Policy
	if policy == nil {
		policy = retry.DefaultPolicy
	}

	scheduler := c.Scheduler
	if scheduler == nil {
		scheduler = delay.Default
	}

	handlers := c.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}

	e := request.Execution{
		Plan:      p,
		ID:        uuid.NewString(),
		Endpoints: policy.Endpoints,
	}
	log := c.logger().With("execution_id", e.ID)

	handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()

RetryLoop:
	for {
		sendAndReceive(transport, &e, handlers)
		handlers.run(AfterAttempt, &e)
		logAttempt(log, &e)

		ctx := p.Context()
		if err := ctx.Err(); err != nil {
			e.Err = err
			break
		}

		if e.Attempt >= policy.MaxRetries {
			if e.Err == nil && e.Response == nil {
				e.Err = ErrNoOutcome
			}
			break
		}

		v := policy.Evaluate(&e)
		switch v.Action() {
		case retry.ActionThrow:
			e.Err = v.Err()
			break RetryLoop
		case retry.ActionWait:
			e.Delay = v.Delay()
			handlers.run(BeforeWait, &e)
			log.Info("waiting before retry",
				"attempt", e.Attempt,
				"status", e.StatusCode(),
				"delay", e.Delay)
			if err := scheduler.Wait(ctx, e.Delay); err != nil {
				e.Err = err
				break RetryLoop
			}
			e.Waits++
		case retry.ActionRedirect:
			from := urlString(p)
			p.URL = v.URL()
			e.Redirects++
			handlers.run(AfterRedirect, &e)
			log.Info("redirecting retry",
				"attempt", e.Attempt,
				"status", e.StatusCode(),
				"from", from,
				"url", p.URL.String())
		default:
			if e.Err == nil && e.Response == nil {
				e.Err = ErrNoOutcome
			}
			break RetryLoop
		}

		e.Request = nil
		e.Response = nil
		e.Err = nil
		e.Body = nil
		e.Delay = 0
		e.Attempt++
	}

	e.End = time.Now()
	if e.Err != nil {
		log.Warn("execution failed",
			"attempt", e.Attempt,
			"url", urlString(p),
			"duration", e.Duration(),
			"error", e.Err)
	}
	handlers.run(AfterExecutionEnd, &e)
	return &e, e.Err
}

func sendAndReceive(t Transport, e *request.Execution, handlers *HandlerGroup) {
	p := e.Plan
	r, err := p.ToRequest()
	if err != nil {
		e.Err = urlErrorWrap(p, err)
		return
	}
	e.Request = r
	handlers.run(BeforeAttempt, e)
	resp, err := t.Do(e.Request)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
		return
	}
	e.Response = resp
	readBody(p, e, handlers)
}

func readBody(p *request.Plan, e *request.Execution, handlers *HandlerGroup) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	handlers.run(BeforeReadBody, e)
	var err error
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Body = nil
		e.Err = urlErrorWrap(p, err)
	}
}

func logAttempt(log *slog.Logger, e *request.Execution) {
	if e.Err != nil {
		log.Debug("attempt failed",
			"attempt", e.Attempt,
			"url", urlString(e.Plan),
			"error", e.Err)
		return
	}
	log.Debug("attempt completed",
		"attempt", e.Attempt,
		"url", urlString(e.Plan),
		"status", e.StatusCode(),
		"throttled", e.Throttled())
}

// Get issues a GET to the specified URL, using the same policies
// followed by Do.
func (c *Client) Get(url string) (*request.Execution, error) {
	return Get(c, url)
}

// Head issues a HEAD to the specified URL, using the same policies
// followed by Do.
func (c *Client) Head(url string) (*request.Execution, error) {
	return Head(c, url)
}

// Post issues a POST to the specified URL, using the same policies
// followed by Do. The body may be any of the types accepted by
// request.BodyBytes.
func (c *Client) Post(url, contentType string, body interface{}) (*request.Execution, error) {
	return Post(c, url, contentType, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body.
func (c *Client) PostForm(url string, data url.Values) (*request.Execution, error) {
	return PostForm(c, url, data)
}

// CloseIdleConnections invokes the same method on the client's
// Transport, if it has one. Otherwise it does nothing.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.transport().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) transport() Transport {
	if c.Transport == nil {
		return http.DefaultClient
	}

	return c.Transport
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return discardLogger
	}

	return c.Logger
}

func urlString(p *request.Plan) string {
	if p.URL == nil {
		return ""
	}

	return p.URL.String()
}

func urlErrorWrap(p *request.Plan, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: urlString(p),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
