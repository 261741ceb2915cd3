// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"io"
	"net/http"
	"sync"

	"github.com/gogama/httpcalls/request"
)

// A tracker reports upload progress for one plan execution. Progress
// is the fraction of the body the transport has read, and the values
// reported never decrease, even when a retry re-reads the body from the
// start.
//
// The transport may read the body on a goroutine of its own, so all
// state is guarded by lock.
type tracker struct {
	lock   sync.Mutex
	total  int64
	max    float64
	closed bool
	emit   func(float64)
}

// newTracker returns nil unless p wants progress and has a body kind
// whose upload can be tracked.
func newTracker(p *request.Plan, emit func(float64)) *tracker {
	if !p.WithProgress || !p.Body.Streamable() {
		return nil
	}
	return &tracker{
		total: int64(p.Body.Len()),
		emit:  emit,
	}
}

// wrap makes r report its body reads to t for one attempt. The returned
// function ends the attempt: reads made afterwards, for instance by a
// transport still running after the attempt timed out, report nothing.
func (t *tracker) wrap(r *http.Request) (stop func()) {
	if t == nil || r.Body == nil {
		return func() {}
	}
	a := &attempt{}
	r.Body = &trackedBody{rc: r.Body, t: t, a: a}
	if getBody := r.GetBody; getBody != nil {
		r.GetBody = func() (io.ReadCloser, error) {
			rc, err := getBody()
			if err != nil {
				return nil, err
			}
			return &trackedBody{rc: rc, t: t, a: a}, nil
		}
	}
	return func() {
		t.lock.Lock()
		defer t.lock.Unlock()
		a.ended = true
	}
}

// An attempt marks the bodies of one attempt. Its ended field is
// guarded by the tracker lock.
type attempt struct {
	ended bool
}

func (t *tracker) report(a *attempt, n int64) {
	if t.total <= 0 {
		return
	}
	x := float64(n) / float64(t.total)
	if x > 1 {
		x = 1
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.closed || a.ended || x <= t.max {
		return
	}
	t.max = x
	t.emit(x)
}

// finish emits 1.0 if it was not reached yet, then closes t.
func (t *tracker) finish() {
	if t == nil {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.closed {
		return
	}
	if t.max < 1 {
		t.max = 1
		t.emit(1)
	}
	t.closed = true
}

// close stops all further emission.
func (t *tracker) close() {
	if t == nil {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.closed = true
}

type trackedBody struct {
	rc io.ReadCloser
	t  *tracker
	a  *attempt
	n  int64
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if n > 0 {
		b.n += int64(n)
		b.t.report(b.a, b.n)
	}
	return n, err
}

func (b *trackedBody) Close() error {
	return b.rc.Close()
}
