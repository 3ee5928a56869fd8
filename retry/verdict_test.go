// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerdict(t *testing.T) {
	t.Run("zero value is Skip", func(t *testing.T) {
		var v Verdict
		assert.Equal(t, ActionSkip, v.Action())
		assert.Equal(t, Skip(), v)
		assert.Equal(t, "Skip", v.String())
	})
	t.Run("Throw", func(t *testing.T) {
		err := errors.New("give up")
		v := Throw(err)
		assert.Equal(t, ActionThrow, v.Action())
		assert.Same(t, err, v.Err())
		assert.Equal(t, time.Duration(0), v.Delay())
		assert.Nil(t, v.URL())
		assert.Equal(t, "Throw(give up)", v.String())
		assert.PanicsWithValue(t, "failover/retry: nil error", func() { Throw(nil) })
	})
	t.Run("Wait", func(t *testing.T) {
		v := Wait(10 * time.Millisecond)
		assert.Equal(t, ActionWait, v.Action())
		assert.Equal(t, 10*time.Millisecond, v.Delay())
		assert.NoError(t, v.Err())
		assert.Nil(t, v.URL())
		assert.Equal(t, "Wait(10ms)", v.String())
		assert.Equal(t, ActionWait, Wait(0).Action())
		assert.PanicsWithValue(t, "failover/retry: negative wait", func() { Wait(-1) })
	})
	t.Run("Redirect", func(t *testing.T) {
		u := &url.URL{Scheme: "https", Host: "b.example.com", Path: "/x"}
		v := Redirect(u)
		assert.Equal(t, ActionRedirect, v.Action())
		assert.Same(t, u, v.URL())
		assert.NoError(t, v.Err())
		assert.Equal(t, "Redirect(https://b.example.com/x)", v.String())
		assert.PanicsWithValue(t, "failover/retry: nil redirect URL", func() { Redirect(nil) })
	})
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "Skip", ActionSkip.String())
	assert.Equal(t, "Throw", ActionThrow.String())
	assert.Equal(t, "Wait", ActionWait.String())
	assert.Equal(t, "Redirect", ActionRedirect.String())
	assert.Equal(t, "Action(9)", Action(9).String())
	assert.Equal(t, "Action(-1)", Action(-1).String())
}
