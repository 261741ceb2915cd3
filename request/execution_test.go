// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/gogama/httpcalls/httperr"
	"github.com/stretchr/testify/assert"
)

func TestExecution_Response(t *testing.T) {
	e := &Execution{}
	assert.Equal(t, 0, e.StatusCode())
	assert.Nil(t, e.Header())
	assert.Empty(t, e.Header().Get("Foo"))

	h := http.Header{"Foo": {"bar"}}
	e.Response = &http.Response{StatusCode: 418, Header: h}
	assert.Equal(t, 418, e.StatusCode())
	assert.Equal(t, "bar", e.Header().Get("foo"))
}

func TestExecution_Duration(t *testing.T) {
	e := &Execution{}
	assert.False(t, e.Started())
	assert.False(t, e.Ended())
	assert.Zero(t, e.Duration())

	e.Start = time.Now().Add(-time.Second)
	assert.True(t, e.Started())
	assert.False(t, e.Ended())
	assert.GreaterOrEqual(t, e.Duration(), time.Second)

	e.End = e.Start.Add(250 * time.Millisecond)
	assert.True(t, e.Ended())
	assert.Equal(t, 250*time.Millisecond, e.Duration())
	assert.Equal(t, 250*time.Millisecond, e.Duration())
}

func TestExecution_Timeout(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("foo"), false},
		{"raw timeout", syscall.ETIMEDOUT, false},
		{"timeout kind", httperr.NewTimeout(syscall.ETIMEDOUT), true},
		{"network kind", httperr.NewNetwork("connection reset", syscall.ECONNRESET), false},
		{"cancelled kind", httperr.NewCancelled(nil), false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			e := &Execution{Err: testCase.err}
			assert.Equal(t, testCase.want, e.Timeout())
		})
	}
}

func TestExecution_Kind(t *testing.T) {
	e := &Execution{Err: httperr.NewHTTP(503, "Service Unavailable", "")}
	assert.Equal(t, httperr.HTTP, e.Kind())
	e.Err = httperr.NewInvalidResponse(nil)
	assert.Equal(t, httperr.InvalidResponse, e.Kind())
}

type keyA struct{}

type keyB struct{}

func TestExecution_Value(t *testing.T) {
	e := &Execution{}
	assert.Nil(t, e.Value(keyA{}))

	e.SetValue(keyA{}, "ham")
	e.SetValue(keyB{}, "eggs")
	e.SetValue("a", 1)
	assert.Equal(t, "ham", e.Value(keyA{}))
	assert.Equal(t, "eggs", e.Value(keyB{}))
	assert.Equal(t, 1, e.Value("a"))

	e.SetValue(keyA{}, "spam")
	assert.Equal(t, "spam", e.Value(keyA{}))
	assert.Equal(t, "eggs", e.Value(keyB{}))

	assert.PanicsWithValue(t, "httpcalls/request: nil key", func() {
		e.SetValue(nil, "x")
	})
}
