// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failover

import (
	"net/url"

	"github.com/gogama/failover/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a request plan and returns the final execution state
// (and error, if any). Client implements Doer, and any other
// implementation must behave substantially the same as Client.Do.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(p *request.Plan) (*request.Execution, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method, as implemented by http.Client and http.Transport.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the full method set of Client: Do, the convenience
// methods Get, Head, Post and PostForm, and CloseIdleConnections.
type Executor interface {
	Doer
	IdleCloser
	Get(url string) (*request.Execution, error)
	Head(url string) (*request.Execution, error)
	Post(url, contentType string, body interface{}) (*request.Execution, error)
	PostForm(url string, data url.Values) (*request.Execution, error)
}

// Get uses d to issue a GET to the specified URL.
func Get(d Doer, url string) (*request.Execution, error) {
	return do(d, "GET", url, "", nil)
}

// Head uses d to issue a HEAD to the specified URL.
func Head(d Doer, url string) (*request.Execution, error) {
	return do(d, "HEAD", url, "", nil)
}

// Post uses d to issue a POST to the specified URL with the given
// content type. The body may be nil or any of the types accepted by
// request.BodyBytes.
func Post(d Doer, url, contentType string, body interface{}) (*request.Execution, error) {
	return do(d, "POST", url, contentType, body)
}

// PostForm uses d to issue a POST to the specified URL, with data's
// keys and values URL-encoded as the request body. The Content-Type
// header is set to application/x-www-form-urlencoded.
func PostForm(d Doer, url string, data url.Values) (*request.Execution, error) {
	return do(d, "POST", url, "application/x-www-form-urlencoded", data)
}

func do(d Doer, method, url, contentType string, body interface{}) (*request.Execution, error) {
	p, err := request.NewPlan(method, url, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		p.Header.Set("Content-Type", contentType)
	}
	return d.Do(p)
}

// Inflate converts any non-nil Doer into an Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("failover: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(p *request.Plan) (*request.Execution, error) {
	return i.doer.Do(p)
}

func (i inflated) Get(url string) (*request.Execution, error) {
	return Get(i.doer, url)
}

func (i inflated) Head(url string) (*request.Execution, error) {
	return Head(i.doer, url)
}

func (i inflated) Post(url, contentType string, body interface{}) (*request.Execution, error) {
	return Post(i.doer, url, contentType, body)
}

func (i inflated) PostForm(url string, data url.Values) (*request.Execution, error) {
	return PostForm(i.doer, url, data)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
