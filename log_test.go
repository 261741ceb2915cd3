// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogHandler(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		assert.PanicsWithValue(t, "httpcalls: nil logger", func() {
			LogHandler(nil)
		})
	})
	t.Run("success", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		handlers := &HandlerGroup{}
		handlers.PushBackAll(LogHandler(zap.New(core)))
		cl := &Client{HTTPDoer: echoDoer(), Handlers: handlers}

		_, err := cl.Get("http://example.test/x").CallName("fetch").Send(context.Background())

		require.NoError(t, err)
		entries := logs.All()
		require.Len(t, entries, 4)
		names := make([]string, len(entries))
		for i, entry := range entries {
			assert.Equal(t, zapcore.DebugLevel, entry.Level)
			assert.Equal(t, "httpcalls event", entry.Message)
			m := entry.ContextMap()
			names[i] = m["event"].(string)
			assert.Equal(t, "fetch", m["call"])
		}
		assert.Equal(t, []string{
			BeforeExecutionStart.Name(),
			BeforeAttempt.Name(),
			AfterAttempt.Name(),
			AfterExecutionEnd.Name(),
		}, names)
		assert.Equal(t, "GET", entries[1].ContextMap()["method"])
		assert.Equal(t, "http://example.test/x", entries[1].ContextMap()["url"])
		assert.EqualValues(t, 200, entries[3].ContextMap()["status"])
	})
	t.Run("failure", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		handlers := &HandlerGroup{}
		handlers.PushBackAll(LogHandler(zap.New(core)))
		cl := &Client{
			HTTPDoer: doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			}),
			RetryPolicy: retry.Exponential(1, 0),
			Handlers:    handlers,
		}

		_, err := cl.Get("http://example.test/x").Send(context.Background())

		require.True(t, httperr.Is(err, httperr.Network))
		assert.Equal(t, 1, logs.FilterMessage("httpcalls event").FilterField(zap.String("event", BeforeBackoff.Name())).Len())
		warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
		require.Len(t, warns, 1)
		assert.Equal(t, "execution failed", warns[0].Message)
		assert.Equal(t, "Network", warns[0].ContextMap()["kind"])
		assert.EqualValues(t, 1, warns[0].ContextMap()["attempt"])
	})
}
