// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"sync"
	"testing"

	"github.com/gogama/httpcalls/dispatch"
	"github.com/gogama/httpcalls/httperr"
	"github.com/gogama/httpcalls/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier(t *testing.T) {
	t.Run("nil dispatcher", func(t *testing.T) {
		n := newNotifier(nil, "x", true, true, true)
		assert.Equal(t, dispatch.Nop, n.d)
		n.start()
		n.emitProgress(0.5)
		n.succeed(200)
	})
	t.Run("all flags off", func(t *testing.T) {
		rec := &recorder{}
		n := newNotifier(rec, "x", false, false, false)
		n.start()
		n.emitProgress(0.5)
		n.fail(httperr.NewTimeout(nil))
		assert.Empty(t, rec.events())
	})
	t.Run("success", func(t *testing.T) {
		rec := &recorder{}
		n := newNotifier(rec, "save", true, true, true)
		n.start()
		n.start()
		n.emitProgress(0.25)
		n.emitProgress(1)
		n.succeed(201)
		n.succeed(201)
		n.fail(httperr.NewTimeout(nil))
		assert.Equal(t, []dispatch.Kind{
			dispatch.LoaderEnabled,
			dispatch.Progress,
			dispatch.Progress,
			dispatch.Success,
			dispatch.LoaderDisabled,
		}, rec.kinds())
		events := rec.events()
		assert.Equal(t, 0.25, events[1].Progress)
		assert.Equal(t, 1.0, events[2].Progress)
		assert.Equal(t, "Request completed successfully (201)", events[3].Message)
		for _, evt := range events {
			assert.Equal(t, "save", evt.Key)
			assert.False(t, evt.At.IsZero())
		}
	})
	t.Run("failure", func(t *testing.T) {
		rec := &recorder{}
		n := newNotifier(rec, "", true, false, true)
		n.start()
		n.fail(httperr.NewHTTP(500, "Internal Server Error", ""))
		assert.Equal(t, []dispatch.Kind{
			dispatch.LoaderEnabled,
			dispatch.Failure,
			dispatch.LoaderDisabled,
		}, rec.kinds())
		assert.Equal(t, "Request failed: HTTP 500: Internal Server Error", rec.events()[1].Message)
		assert.Equal(t, "", rec.events()[1].Key)
	})
	t.Run("loader disabled only if started", func(t *testing.T) {
		rec := &recorder{}
		n := newNotifier(rec, "x", true, false, false)
		n.fail(httperr.NewCancelled(nil))
		assert.Empty(t, rec.events())
	})
	t.Run("preflight", func(t *testing.T) {
		rec := &recorder{}
		n := newNotifier(rec, "x", true, false, true)
		n.preflight(httperr.NewInvalidURL("::", nil))
		assert.Equal(t, []dispatch.Kind{
			dispatch.LoaderEnabled,
			dispatch.Failure,
			dispatch.LoaderDisabled,
		}, rec.kinds())
		assert.Equal(t, "Request failed: Invalid URL: ::", rec.events()[1].Message)
	})
}

func TestPlanNotifier(t *testing.T) {
	client := &recorder{}
	own := &recorder{}
	p := &request.Plan{CallName: "k", WithLoader: true}

	n := planNotifier(client, p)
	assert.Same(t, client, n.d)
	assert.Equal(t, "k", n.key)
	assert.True(t, n.loader)
	assert.False(t, n.progress)
	assert.False(t, n.notify)

	p.Dispatcher = own
	n = planNotifier(client, p)
	assert.Same(t, own, n.d)
}

func TestNotifier_Store(t *testing.T) {
	store := dispatch.NewStore(0)
	var seen []dispatch.Event
	cancel := store.Listen("upload", func(evt dispatch.Event) {
		seen = append(seen, evt)
	})
	defer cancel()

	n := newNotifier(store, "upload", true, true, true)
	n.start()
	assert.True(t, store.Loading("upload"))
	n.emitProgress(0.5)
	x, ok := store.Progress("upload")
	require.True(t, ok)
	assert.Equal(t, 0.5, x)
	n.succeed(200)
	assert.False(t, store.Loading("upload"))
	notes := store.Notifications("upload")
	require.Len(t, notes, 1)
	assert.Equal(t, dispatch.Success, notes[0].Kind)
	assert.Len(t, seen, 4)
}

// A recorder is a dispatcher that keeps every event it receives.
type recorder struct {
	lock sync.Mutex
	evts []dispatch.Event
}

func (r *recorder) Emit(evt dispatch.Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.evts = append(r.evts, evt)
}

func (r *recorder) events() []dispatch.Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]dispatch.Event(nil), r.evts...)
}

func (r *recorder) kinds() []dispatch.Kind {
	evts := r.events()
	kinds := make([]dispatch.Kind, len(evts))
	for i := range evts {
		kinds[i] = evts[i].Kind
	}
	return kinds
}
