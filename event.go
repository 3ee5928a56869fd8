// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failover

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality, for example metrics.
type Event int

const (
	// BeforeExecutionStart occurs before the execution starts. When it
	// fires, the only fields of the execution which are set are Plan,
	// ID and Endpoints.
	BeforeExecutionStart Event = iota
	// BeforeAttempt occurs before each attempt. The execution's
	// Request field is set to the HTTP request that will be sent once
	// all BeforeAttempt handlers have finished. Handlers may change
	// the request. Its header is a private copy, but its URL is shared
	// with the plan and must be cloned before being changed.
	BeforeAttempt
	// BeforeReadBody occurs when an attempt has received an HTTP
	// response, before the response body is read. It fires for every
	// response whatever its status code, but never when the attempt
	// ended in a transport error.
	BeforeReadBody
	// AfterAttempt occurs after every attempt, before the plan context
	// is checked and before the retry policy is consulted.
	//
	// When AfterAttempt fires, the execution's Response or Err field
	// is set. Both are set only if reading the response body failed.
	AfterAttempt
	// BeforeWait occurs when the retry policy has decided to wait
	// before retrying. The execution's Delay field holds the wait.
	BeforeWait
	// AfterRedirect occurs when the retry policy has redirected the
	// next attempt to another endpoint. The plan's URL has already
	// been replaced and the execution's Redirects counter incremented.
	AfterRedirect
	// AfterExecutionEnd occurs after the execution ends. The execution
	// is in its final state: End is set, and Err holds the error which
	// Do is about to return.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttempt",
	"BeforeWait",
	"AfterRedirect",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur in an
// execution, in the order in which they would first occur.
func Events() []Event {
	events := make([]Event, numEvents)
	for i := range events {
		events[i] = Event(i)
	}
	return events
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
