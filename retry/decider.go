// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
	"github.com/gogama/httpcalls/transient"
)

// A Decider decides if a retry should be done.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times, Kinds, and Before, and the
// built-in deciders RetryableErr and TransientErr; or implement your
// Decider. Use
// DeciderFunc to convert an ordinary function into a Decider, and to
// compose deciders logically using DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface, and
// also provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
//
// Simple DeciderFunc functions can be composed into complex decision
// trees using the logical composition functions DeciderFunc.And and
// DeciderFunc.Or. Because of this composition ability, it will often
// be convenient to work directly with DeciderFunc rather than with
// Decider.
type DeciderFunc func(e *request.Execution) bool

// DefaultTimes is the number of times DefaultPolicy will retry.
const DefaultTimes = 5

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It will allow up to DefaultTimes retries (i.e. up
// to 6 total attempts), and will retry when the attempt failed with a
// retryable error (RetryableErr).
//
// Responses with a non-2XX status code are never retried, whatever the
// decider says, so there is no status code decider.
var DefaultDecider = Times(DefaultTimes).And(RetryableErr)

// RetryableErr is a decider that indicates a retry if the current
// error is an *httperr.Error whose kind is retryable, namely a Network
// or Timeout error.
var RetryableErr DeciderFunc = retryableErr

// TransientErr is a decider that indicates a retry if the current
// error is transient according to transient.Categorize.
//
// TransientErr only looks at the error, so it will always return false
// if a valid HTTP response is returned. It is narrower than
// RetryableErr when composed with transient categories, for example to
// retry only connection resets:
//
//	retry.Times(3).And(func(e *request.Execution) bool {
//		return transient.Categorize(e.Err) == transient.ConnReset
//	})
var TransientErr DeciderFunc = transientErr

// Decide returns true if a retry should be done, and false otherwise,
// after examining the current HTTP request plan execution state.
func (f DeciderFunc) Decide(e *request.Execution) bool {
	return f(e)
}

// And composes two retry deciders into a new decider which returns true
// if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the execution attempt index
// e.Attempt is less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Attempt < n
	}
}

// Before constructs a retry decider allowing retries until a certain
// amount of time has elapsed since the start of the logical HTTP request
// plan execution. The returned decider returns true while the execution
// duration is less than d, and false afterward.
func Before(d time.Duration) DeciderFunc {
	return func(e *request.Execution) bool {
		return e.Duration() < d
	}
}

// Kinds constructs a retry decider allowing retries based on the kind
// of the error from the most recent request attempt. If the error is
// an *httperr.Error and its kind is contained in the list ks, the
// decider returns true. Otherwise, it returns false.
//
// Listing a kind that is never retried, such as httperr.HTTP, has no
// effect.
func Kinds(ks ...httperr.Kind) DeciderFunc {
	ks2 := make([]httperr.Kind, len(ks))
	copy(ks2, ks)
	return func(e *request.Execution) bool {
		k := httperr.KindOf(e.Err)
		for _, k2 := range ks2 {
			if k == k2 {
				return true
			}
		}
		return false
	}
}

func retryableErr(e *request.Execution) bool {
	return httperr.KindOf(e.Err).Retryable()
}

func transientErr(e *request.Execution) bool {
	return transient.Categorize(e.Err).Transient()
}
