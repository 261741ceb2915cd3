// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
	"github.com/gogama/httpcalls/transient"
	"go.uber.org/zap"
)

// LogHandler returns a handler which logs every event it handles to
// logger at debug level, except AfterAttemptTimeout and failed
// executions, which are logged at warn level.
//
// Install it for all events with HandlerGroup.PushBackAll:
//
//	handlers := &httpcalls.HandlerGroup{}
//	handlers.PushBackAll(httpcalls.LogHandler(logger))
func LogHandler(logger *zap.Logger) Handler {
	if logger == nil {
		panic("httpcalls: nil logger")
	}
	return HandlerFunc(func(evt Event, e *request.Execution) {
		fields := []zap.Field{
			zap.String("event", evt.Name()),
			zap.String("call", e.Plan.CallName),
			zap.Stringer("execution", e.ID),
			zap.Int("attempt", e.Attempt),
		}
		switch evt {
		case BeforeAttempt:
			if e.Request != nil {
				fields = append(fields,
					zap.String("method", e.Request.Method),
					zap.String("url", e.Request.URL.String()))
			}
		case AfterAttempt:
			if e.Response != nil {
				fields = append(fields, zap.Int("status", e.StatusCode()))
			}
			if e.Err != nil {
				fields = append(fields,
					zap.Stringer("transience", transient.Categorize(e.Err)),
					zap.Error(e.Err))
			}
		case AfterAttemptTimeout:
			logger.Warn("attempt timed out", append(fields,
				zap.Int("attempt_timeouts", e.AttemptTimeouts))...)
			return
		case BeforeBackoff:
			fields = append(fields, zap.Duration("wait", e.Wait))
		case AfterExecutionEnd:
			fields = append(fields, zap.Duration("duration", e.Duration()))
			if e.Err != nil {
				logger.Warn("execution failed", append(fields,
					zap.Stringer("kind", httperr.KindOf(e.Err)),
					zap.Error(e.Err))...)
				return
			}
			fields = append(fields, zap.Int("status", e.StatusCode()))
		}
		logger.Debug("httpcalls event", fields...)
	})
}
