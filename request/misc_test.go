// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gogama/httpcalls/httperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBodyBytes(t *testing.T) {
	t.Run("accepted types", func(t *testing.T) {
		shared := []byte("bar")
		testCases := []struct {
			name string
			body interface{}
			want []byte
		}{
			{"nil", nil, nil},
			{"string", "foo", []byte("foo")},
			{"bytes", shared, shared},
			{"reader", strings.NewReader("baz"), []byte("baz")},
			{"read closer", io.NopCloser(bytes.NewReader([]byte("qux"))), []byte("qux")},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				b, err := BodyBytes(testCase.body)
				require.NoError(t, err)
				assert.Equal(t, testCase.want, b)
			})
		}
	})
	t.Run("invalid type", func(t *testing.T) {
		b, err := BodyBytes(10)
		assert.Nil(t, b)
		assert.True(t, httperr.Is(err, httperr.Configuration))
		assert.Contains(t, err.Error(), "invalid body type int")
	})
	t.Run("reader errors", func(t *testing.T) {
		readErr := errors.New("ham")
		closeErr := errors.New("eggs")
		testCases := []struct {
			name      string
			readN     int
			readErr   error
			closeErr  error
			wantCause error
		}{
			{"read", 10, readErr, nil, readErr},
			{"read and close", 0, readErr, closeErr, readErr},
			{"close", 0, io.EOF, closeErr, closeErr},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				m := &mockReadCloser{}
				m.Test(t)
				m.On("Read", mock.Anything).Return(testCase.readN, testCase.readErr).Once()
				m.On("Close").Return(testCase.closeErr).Once()
				b, err := BodyBytes(m)
				assert.Nil(t, b)
				assert.True(t, httperr.Is(err, httperr.Serialization))
				assert.Same(t, testCase.wantCause, errors.Unwrap(err))
				m.AssertExpectations(t)
			})
		}
	})
}

type mockReadCloser struct {
	mock.Mock
}

func (m *mockReadCloser) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockReadCloser) Close() error {
	return m.Called().Error(0)
}
