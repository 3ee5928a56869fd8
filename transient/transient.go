// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"io"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// Not means a retry is very unlikely to succeed. Every other category
// means the failure may well clear up on its own, so a retry has some
// prospect of success.
type Category int

const (
	// Not indicates a nil error or any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error, or one of
	// its wrapped causes, has a Timeout method reporting true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (syscall.ECONNREFUSED). Services refuse connections briefly while
	// starting or restarting.
	ConnRefused
	// ConnReset indicates the remote host reset an established
	// connection (syscall.ECONNRESET), typically a load balancer or a
	// server shutting down mid-response.
	ConnReset
	// ConnAborted indicates the connection was aborted locally
	// (syscall.ECONNABORTED).
	ConnAborted
	// EOF indicates the server closed the connection before a complete
	// response was read (io.EOF or io.ErrUnexpectedEOF), which happens
	// when a pooled keep-alive connection is closed by the server.
	EOF
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"ConnAborted",
	"EOF",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of err, looking through
// wrapped causes as well as err itself. Timeout takes precedence over
// all other categories. Categorize never consults a Temporary method,
// as its semantics are unclear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNABORTED:
			return ConnAborted
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return EOF
	}

	return Not
}

// IsTransient reports whether Categorize(err) != Not.
func IsTransient(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}
