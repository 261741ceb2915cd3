// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gogama/httpcalls/request"
)

// A Waiter decides how long to back off after attempt e.Attempt fails
// and before the next attempt starts.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines. The client only calls Wait once the policy Decider has
// approved a retry, and records the result in e.Wait.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// The WaiterFunc type is an adapter to allow the use of ordinary
// functions as retry waiters.
type WaiterFunc func(e *request.Execution) time.Duration

// Wait returns f(e).
func (f WaiterFunc) Wait(e *request.Execution) time.Duration {
	return f(e)
}

// DefaultWaiter is a jittered exponential backoff with a base wait of
// 50 milliseconds and a maximum wait of 1 second.
var DefaultWaiter = NewExpWaiter(50*time.Millisecond, 1*time.Second, time.Now())

const maxDuration = time.Duration(math.MaxInt64)

// NewFixedWaiter constructs a Waiter that always returns d, which must
// not be negative.
func NewFixedWaiter(d time.Duration) Waiter {
	if d < 0 {
		panic("httpcalls/retry: fixed wait must not be negative")
	}
	return WaiterFunc(func(*request.Execution) time.Duration {
		return d
	})
}

// Backoff returns base * 2^attempt, capped at max. A negative attempt
// counts as zero and a non-positive base gives zero.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		if d > max/2 {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}

// NewExpWaiter constructs a Waiter whose wait before retry k+1 is
// Backoff(base, max, k), optionally jittered using the "Full Jitter"
// approach described in
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter.
//
// Base must be positive and max must be at least base.
//
// Pass nil for jitter to get the exact backoff on every attempt. To
// jitter, pass a seed (a time.Time, int, or int64), a rand.Source, or a
// *rand.Rand; the waiter then returns a uniform random duration in
// [0, Backoff(base, max, k)).
func NewExpWaiter(base, max time.Duration, jitter interface{}) Waiter {
	if base < 1 {
		panic("httpcalls/retry: base must be positive")
	}
	if max < base {
		panic("httpcalls/retry: max must be at least base")
	}
	return &expWaiter{
		base: base,
		max:  max,
		rand: newLockedRand(jitter),
	}
}

type expWaiter struct {
	base time.Duration
	max  time.Duration
	rand *lockedRand
}

func (w *expWaiter) Wait(e *request.Execution) time.Duration {
	ceil := Backoff(w.base, w.max, e.Attempt)
	if w.rand == nil {
		return ceil
	}
	return w.rand.below(ceil)
}

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use.
type lockedRand struct {
	lock sync.Mutex
	r    *rand.Rand
}

func (l *lockedRand) below(d time.Duration) time.Duration {
	l.lock.Lock()
	defer l.lock.Unlock()
	return time.Duration(l.r.Int63n(int64(d)))
}

func newLockedRand(jitter interface{}) *lockedRand {
	var r *rand.Rand
	switch j := jitter.(type) {
	case nil:
		return nil
	case *rand.Rand:
		if j == nil {
			panic("httpcalls/retry: jitter may not be a typed nil")
		}
		r = j
	case rand.Source:
		r = rand.New(j)
	case time.Time:
		r = rand.New(rand.NewSource(j.UnixNano()))
	case int:
		r = rand.New(rand.NewSource(int64(j)))
	case int64:
		r = rand.New(rand.NewSource(j))
	default:
		panic("httpcalls/retry: invalid jitter type")
	}
	return &lockedRand{r: r}
}
