// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/httpcalls/request"
)

// A Policy chooses the timeout of each attempt of a plan execution.
//
// The client consults its Policy only for plans which set neither a
// per-request Timeout nor NoTimeout. It calls Timeout just before each
// attempt, so e describes the outcome of the previous attempt, if any.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Timeout(e *request.Execution) time.Duration
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as timeout policies.
type PolicyFunc func(e *request.Execution) time.Duration

// Timeout returns f(e).
func (f PolicyFunc) Timeout(e *request.Execution) time.Duration {
	return f(e)
}

// Forever is the timeout meaning "no timeout".
const Forever = time.Duration(1<<63 - 1)

// Infinite is a policy which never times out.
var Infinite Policy = Fixed(Forever)

// DefaultPolicy is the policy of a client with no TimeoutPolicy set:
// attempts have no timeout unless the request sets one.
var DefaultPolicy = Infinite

// Active reports whether d is an actual timeout. Non-positive values
// and Forever mean the attempt runs without one.
func Active(d time.Duration) bool {
	return d > 0 && d < Forever
}

// Fixed constructs a policy giving every attempt the timeout d.
func Fixed(d time.Duration) Policy {
	return policy{d}
}

// Adaptive constructs a policy which lengthens the timeout after an
// attempt times out, for services with occasional bursts of slowness.
//
// An attempt gets the usual timeout unless the attempt before it timed
// out. In that case it gets after[k-1], where k is the number of
// attempts that have timed out so far, or the last element of after
// once k exceeds len(after). For example,
//
//	Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// gives 200ms normally, 1s right after the first attempt timeout and
// 10s right after any later one.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	return policy(append([]time.Duration{usual}, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	if !e.Timeout() || e.AttemptTimeouts == 0 {
		return p[0]
	}
	i := e.AttemptTimeouts
	if i >= len(p) {
		i = len(p) - 1
	}
	return p[i]
}
