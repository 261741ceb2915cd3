// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/gogama/httpcalls/request"
	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	testCases := []struct {
		base, max time.Duration
		attempt   int
		want      time.Duration
	}{
		{100 * time.Millisecond, time.Hour, 0, 100 * time.Millisecond},
		{100 * time.Millisecond, time.Hour, 1, 200 * time.Millisecond},
		{100 * time.Millisecond, time.Hour, 2, 400 * time.Millisecond},
		{100 * time.Millisecond, time.Hour, -3, 100 * time.Millisecond},
		{100 * time.Millisecond, 300 * time.Millisecond, 2, 300 * time.Millisecond},
		{time.Second, 500 * time.Millisecond, 0, 500 * time.Millisecond},
		{time.Nanosecond, maxDuration, 62, 1 << 62},
		{time.Nanosecond, maxDuration, 63, maxDuration},
		{time.Millisecond, maxDuration, math.MaxInt64, maxDuration},
		{0, time.Hour, 5, 0},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, Backoff(testCase.base, testCase.max, testCase.attempt),
			"Backoff(%s, %s, %d)", testCase.base, testCase.max, testCase.attempt)
	}
}

func TestNewFixedWaiter(t *testing.T) {
	w := NewFixedWaiter(250 * time.Millisecond)
	for _, attempt := range []int{0, 1, 10} {
		assert.Equal(t, 250*time.Millisecond, w.Wait(&request.Execution{Attempt: attempt}))
	}
	assert.Equal(t, time.Duration(0), NewFixedWaiter(0).Wait(&request.Execution{}))
	assert.PanicsWithValue(t, "httpcalls/retry: fixed wait must not be negative", func() {
		NewFixedWaiter(-1)
	})
}

func TestDefaultWaiter(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		ceil := Backoff(50*time.Millisecond, time.Second, attempt)
		wait := DefaultWaiter.Wait(&request.Execution{Attempt: attempt})
		assert.GreaterOrEqual(t, wait, time.Duration(0))
		assert.Less(t, wait, ceil)
	}
}

func TestNewExpWaiter(t *testing.T) {
	base, max := time.Millisecond, time.Hour

	t.Run("panics", func(t *testing.T) {
		var nilRand *rand.Rand
		testCases := []struct {
			name      string
			base, max time.Duration
			jitter    interface{}
			want      string
		}{
			{"negative base", -1, max, nil, "httpcalls/retry: base must be positive"},
			{"zero base", 0, max, nil, "httpcalls/retry: base must be positive"},
			{"max below base", 2, 1, nil, "httpcalls/retry: max must be at least base"},
			{"float jitter", base, max, 1.0, "httpcalls/retry: invalid jitter type"},
			{"nil *rand.Rand", base, max, nilRand, "httpcalls/retry: jitter may not be a typed nil"},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				assert.PanicsWithValue(t, testCase.want, func() {
					NewExpWaiter(testCase.base, testCase.max, testCase.jitter)
				})
			})
		}
	})
	t.Run("exact", func(t *testing.T) {
		var src rand.Source
		for _, jitter := range []interface{}{nil, src} {
			w := NewExpWaiter(base, max, jitter)
			for attempt := 0; attempt < 10; attempt++ {
				assert.Equal(t, time.Duration(1<<attempt)*time.Millisecond, w.Wait(&request.Execution{Attempt: attempt}))
			}
			assert.Equal(t, max, w.Wait(&request.Execution{Attempt: 25}))
			assert.Equal(t, max, w.Wait(&request.Execution{Attempt: math.MaxInt64}))
		}
	})
	t.Run("jittered", func(t *testing.T) {
		jitters := map[string]interface{}{
			"zero time":   time.Time{},
			"time.Now":    time.Now(),
			"int":         1,
			"int64":       int64(1),
			"rand.Source": rand.NewSource(0),
			"*rand.Rand":  rand.New(rand.NewSource(0)),
		}
		for name, jitter := range jitters {
			t.Run(name, func(t *testing.T) {
				w := NewExpWaiter(base, max, jitter)
				var total time.Duration
				for attempt := 0; attempt < 100; attempt++ {
					d := w.Wait(&request.Execution{Attempt: attempt})
					assert.GreaterOrEqual(t, d, time.Duration(0))
					assert.Less(t, d, Backoff(base, max, attempt))
					total += d
				}
				assert.Greater(t, total, time.Duration(0))
			})
		}
	})
	t.Run("concurrent", func(t *testing.T) {
		w := NewExpWaiter(base, max, 0)
		var wg sync.WaitGroup
		for g := 0; g < 100; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for attempt := 0; attempt < 22; attempt++ {
					d := w.Wait(&request.Execution{Attempt: attempt})
					assert.GreaterOrEqual(t, d, time.Duration(0))
					assert.Less(t, d, time.Duration(1<<attempt)*time.Millisecond)
				}
			}()
		}
		wg.Wait()
	})
}

func TestWaiterFunc(t *testing.T) {
	w := WaiterFunc(func(e *request.Execution) time.Duration {
		return time.Duration(e.Attempt) * time.Second
	})
	assert.Equal(t, 3*time.Second, w.Wait(&request.Execution{Attempt: 3}))
}
