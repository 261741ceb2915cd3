// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"time"

	"github.com/gogama/httpcalls/httperr"
	"github.com/google/uuid"
)

// An Execution is the running state of one Plan sent by the client.
//
// The client creates an Execution when it starts executing a plan and
// updates it after every attempt and backoff. Timeout and retry
// policies and event handlers receive it, and should treat its exported
// fields as read-only. Handlers may modify Request before it is sent
// (to sign it, for instance) and may keep their own state with SetValue
// and Value.
//
// An Execution is only ever touched by the goroutine executing the
// plan, so it needs no locking.
type Execution struct {
	// Plan is the plan being executed. It is never nil.
	Plan *Plan

	// ID identifies the execution in logs and, optionally, in a request
	// ID header sent with every attempt.
	ID uuid.UUID

	// Start and End bracket the execution. Start is set when the first
	// attempt is about to begin; End is set when the final outcome is
	// known. Both are zero until then.
	Start time.Time
	End   time.Time

	// Attempt is the zero-based number of the current attempt: zero
	// for the first attempt, one for the first retry, and so on. Once
	// the execution has ended it is the number of the last attempt.
	Attempt int

	// AttemptTimeouts counts the attempts that ended because their own
	// timeout expired. A deadline on the plan context does not count.
	AttemptTimeouts int

	// Request is the HTTP request of the current or last attempt.
	Request *http.Request

	// Response is the HTTP response of the last attempt, or nil if
	// there is none yet or the attempt failed in transport.
	Response *http.Response

	// Body is the complete response body of the last attempt.
	Body []byte

	// Err is the outcome of the last attempt, or of the execution once
	// it has ended. It is nil after a successful attempt and otherwise
	// always an *httperr.Error. A non-2XX response sets both Body and
	// Err, the Http error carrying the same body.
	Err error

	// Wait is the backoff chosen before the next attempt. It is set
	// just before the BeforeBackoff event and cleared when the next
	// attempt starts.
	Wait time.Duration

	values map[interface{}]interface{}
}

// StatusCode returns the status code of the last response, or zero if
// there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the header of the last response, or nil if there is
// none. The nil header is safe to read from.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		return nil
	}
	return e.Response.Header
}

// Kind returns the kind of Err. It is meaningless when Err is nil.
func (e *Execution) Kind() httperr.Kind {
	return httperr.KindOf(e.Err)
}

// Duration returns how long the execution has been running: zero before
// it starts, the time elapsed since Start while it runs, and End minus
// Start once it has ended.
func (e *Execution) Duration() time.Duration {
	switch {
	case !e.Started():
		return 0
	case !e.Ended():
		return time.Since(e.Start)
	default:
		return e.End.Sub(e.Start)
	}
}

// Started reports whether Start has been set.
func (e *Execution) Started() bool {
	return !e.Start.IsZero()
}

// Ended reports whether End has been set. An ended execution does not
// change any more.
func (e *Execution) Ended() bool {
	return !e.End.IsZero()
}

// Timeout reports whether Err is a Timeout error, whether the attempt
// timeout or the plan context's deadline expired.
//
// Timeout may be false while AttemptTimeouts is positive, if a later
// attempt ended differently.
func (e *Execution) Timeout() bool {
	return e.Err != nil && httperr.Is(e.Err, httperr.Timeout)
}

// SetValue stores value under key for the rest of the execution.
// Handlers and policies should use unexported key types of their own
// to avoid collisions. The key must be comparable and not nil.
func (e *Execution) SetValue(key, value interface{}) {
	if key == nil {
		panic("httpcalls/request: nil key")
	}
	if e.values == nil {
		e.values = make(map[interface{}]interface{})
	}
	e.values[key] = value
}

// Value returns the value stored under key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	return e.values[key]
}
