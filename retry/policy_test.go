// Copyright 2021 The failover Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/failover/endpoint"
	"github.com/gogama/failover/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	assert.Equal(t, DefaultMaxRetries, DefaultPolicy.MaxRetries)
	assert.Equal(t, 3, DefaultPolicy.MaxRetries)
	assert.Empty(t, DefaultPolicy.Endpoints)
	require.Len(t, DefaultPolicy.Strategies, 2)
	t.Run("throttled with header waits for header", func(t *testing.T) {
		v := DefaultPolicy.Evaluate(&request.Execution{
			Response: &http.Response{StatusCode: 429, Header: http.Header{"Retry-After": {"7"}}},
		})
		assert.Equal(t, Wait(7*time.Second), v)
	})
	t.Run("throttled without header backs off", func(t *testing.T) {
		v := DefaultPolicy.Evaluate(&request.Execution{
			Response: &http.Response{StatusCode: 503},
		})
		assert.Equal(t, ActionWait, v.Action())
		assert.LessOrEqual(t, v.Delay(), 50*time.Millisecond)
	})
	t.Run("transient error backs off", func(t *testing.T) {
		v := DefaultPolicy.Evaluate(&request.Execution{
			Attempt: 2,
			Err:     syscall.ECONNRESET,
		})
		assert.Equal(t, ActionWait, v.Action())
		assert.LessOrEqual(t, v.Delay(), 200*time.Millisecond)
	})
	t.Run("success skips", func(t *testing.T) {
		v := DefaultPolicy.Evaluate(&request.Execution{
			Response: &http.Response{StatusCode: 200},
		})
		assert.Equal(t, Skip(), v)
	})
}

func TestNever(t *testing.T) {
	assert.Equal(t, 0, Never.MaxRetries)
	assert.Equal(t, Skip(), Never.Evaluate(&request.Execution{Err: syscall.ECONNRESET}))
}

func TestNewPolicy(t *testing.T) {
	endpoints := endpoint.MustList("https://a.example.com", "https://b.example.com")
	t.Run("bad args", func(t *testing.T) {
		p, err := NewPolicy(-1, endpoints)
		assert.Nil(t, p)
		assert.EqualError(t, err, "failover/retry: negative max retries")
		p, err = NewPolicy(3, nil)
		assert.Nil(t, p)
		assert.EqualError(t, err, "failover/retry: no endpoints")
		p, err = NewPolicy(3, endpoints, ThrottlingRedirect, nil)
		assert.Nil(t, p)
		assert.EqualError(t, err, "failover/retry: nil strategy at index 1")
	})
	t.Run("zero retries allowed", func(t *testing.T) {
		p, err := NewPolicy(0, endpoints)
		require.NoError(t, err)
		assert.Equal(t, 0, p.MaxRetries)
		assert.Empty(t, p.Strategies)
	})
	t.Run("arguments are copied", func(t *testing.T) {
		strategies := []Strategy{ThrottlingRedirect, DefaultBackoff}
		list := append(endpoint.List(nil), endpoints...)
		p, err := NewPolicy(2, list, strategies...)
		require.NoError(t, err)
		strategies[0] = nil
		list[0] = nil
		assert.NotNil(t, p.Strategies[0])
		assert.NotNil(t, p.Endpoints[0])
		assert.Equal(t, 2, p.MaxRetries)
	})
}

func TestPolicy_Evaluate(t *testing.T) {
	e := &request.Execution{}
	t.Run("no strategies", func(t *testing.T) {
		p := &Policy{MaxRetries: 3}
		assert.Equal(t, Skip(), p.Evaluate(e))
	})
	t.Run("first non-skip wins", func(t *testing.T) {
		s1, s2, s3 := &mockStrategy{}, &mockStrategy{}, &mockStrategy{}
		s1.Test(t)
		s2.Test(t)
		s3.Test(t)
		err := errors.New("stop")
		s1.On("Evaluate", e).Return(Skip()).Once()
		s2.On("Evaluate", e).Return(Throw(err)).Once()
		p := &Policy{Strategies: []Strategy{s1, s2, s3}}
		v := p.Evaluate(e)
		assert.Equal(t, ActionThrow, v.Action())
		assert.Same(t, err, v.Err())
		s1.AssertExpectations(t)
		s2.AssertExpectations(t)
		s3.AssertNotCalled(t, "Evaluate", mock.Anything)
	})
	t.Run("all skip", func(t *testing.T) {
		s1, s2 := &mockStrategy{}, &mockStrategy{}
		s1.Test(t)
		s2.Test(t)
		s1.On("Evaluate", e).Return(Skip()).Once()
		s2.On("Evaluate", e).Return(Skip()).Once()
		p := &Policy{Strategies: []Strategy{s1, s2}}
		assert.Equal(t, Skip(), p.Evaluate(e))
		s1.AssertExpectations(t)
		s2.AssertExpectations(t)
	})
}

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Evaluate(e *request.Execution) Verdict {
	args := m.Called(e)
	return args.Get(0).(Verdict)
}
