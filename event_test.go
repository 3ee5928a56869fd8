// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	assert.Len(t, eventNames, numEvents)
	assert.Equal(t, []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeReadBody,
		AfterAttempt,
		BeforeWait,
		AfterRedirect,
		AfterExecutionEnd,
	}, Events())
}

func TestEvent_Name(t *testing.T) {
	for i, evt := range Events() {
		assert.Equal(t, eventNames[i], evt.Name())
		assert.Equal(t, evt.Name(), evt.String())
	}
	assert.Equal(t, "BeforeWait", BeforeWait.Name())
	assert.Equal(t, "AfterRedirect", AfterRedirect.String())
}
