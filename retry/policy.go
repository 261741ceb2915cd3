// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/httpcalls/request"
)

// A Policy controls if and how retries are done in an HTTP request
// plan execution. In particular, after every attempt during the HTTP
// request plan execution, a Policy decides whether a retry should be
// done and, if so, how long the wait period should be before retrying
// the attempt.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
//
// A Policy is composed of the Decider and Waiter interfaces. While you
// can implement Policy yourself, it may be more efficient to use one
// of the built-in retry policies, DefaultPolicy or Never, or to construct
// your policy using the NewPolicy constructor using existing Decider
// and Waiter implementations.
type Policy interface {
	Decider
	Waiter
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// use cases. It is a composition of DefaultDecider for retry decisions
// and DefaultWaiter for wait time calculations.
var DefaultPolicy Policy = policy{DefaultDecider, DefaultWaiter}

// Never is a policy that never retries. It is the client default when
// no retry policy is configured.
var Never Policy = policy{Times(0), DefaultWaiter}

// Exponential constructs the policy used for a per-request retry
// setting: up to n retries of retryable errors (RetryableErr), waiting
// delay * 2^attempt before each retry, with no jitter and no cap. The
// first retry waits delay, the second 2*delay, and so on.
//
// A zero delay retries immediately. Exponential panics if n or delay is
// negative.
func Exponential(n int, delay time.Duration) Policy {
	if n < 0 {
		panic("httpcalls/retry: n must not be negative")
	}
	if delay < 0 {
		panic("httpcalls/retry: delay must not be negative")
	}
	var w Waiter
	if delay == 0 {
		w = NewFixedWaiter(0)
	} else {
		w = NewExpWaiter(delay, maxDuration, nil)
	}
	return policy{Times(n).And(RetryableErr), w}
}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("httpcalls/retry: nil decider")
	}
	if w == nil {
		panic("httpcalls/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

func (p policy) Decide(e *request.Execution) bool {
	return p.decider.Decide(e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}
