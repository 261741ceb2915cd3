// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httperr

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	testCases := []struct {
		err      *Error
		expected string
	}{
		{NewNetwork("Connection failed", nil), "Network error: Connection failed"},
		{NewTimeout(nil), "Request timeout"},
		{NewInvalidURL("::", nil), "Invalid URL: ::"},
		{NewSerialization("bad", nil), "Serialization error: bad"},
		{NewHTTP(404, "Not Found", ""), "HTTP 404: Not Found"},
		{NewCancelled(nil), "Cancelled by user"},
		{NewInvalidResponse(nil), "Invalid response format"},
		{NewConfiguration("negative timeout %d", -1), "Configuration error: negative timeout -1"},
	}
	for i, testCase := range testCases {
		t.Run(fmt.Sprintf("testCases[%d]=%s", i, testCase.err.Kind), func(t *testing.T) {
			assert.Equal(t, testCase.expected, testCase.err.Error())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, Kind(0), KindOf(errors.New("foo")))
	assert.Equal(t, Timeout, KindOf(NewTimeout(nil)))
	assert.Equal(t, HTTP, KindOf(fmt.Errorf("wrapped: %w", NewHTTP(500, "Internal Server Error", "oops"))))
	assert.True(t, Is(NewCancelled(nil), Cancelled))
	assert.False(t, Is(NewCancelled(nil), Timeout))
}

func TestErrorsIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewNetwork("reset", syscall.ECONNRESET))
	assert.True(t, errors.Is(err, &Error{Kind: Network}))
	assert.False(t, errors.Is(err, &Error{Kind: Timeout}))
	assert.True(t, errors.Is(err, syscall.ECONNRESET))
}

func TestError_Timeout(t *testing.T) {
	assert.True(t, NewTimeout(nil).Timeout())
	assert.False(t, NewNetwork("x", nil).Timeout())
}

func TestKind(t *testing.T) {
	assert.True(t, Network.Retryable())
	assert.True(t, Timeout.Retryable())
	for _, k := range []Kind{InvalidURL, Serialization, HTTP, Cancelled, InvalidResponse, Configuration} {
		assert.False(t, k.Retryable(), k.String())
	}
	assert.Equal(t, "Http", HTTP.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
