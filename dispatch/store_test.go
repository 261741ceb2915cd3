// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	assert.Len(t, kindNames, int(kindSentinel))
	assert.Len(t, Kinds(), int(kindSentinel))
	assert.Equal(t, "LoaderEnabled", LoaderEnabled.String())
	assert.Equal(t, "Failure", Failure.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.True(t, Success.Notification())
	assert.True(t, Failure.Notification())
	assert.False(t, Progress.Notification())
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "LoaderEnabled[-]", Event{Kind: LoaderEnabled}.String())
	assert.Equal(t, "Progress[up] 0.500", Event{Kind: Progress, Key: "up", Progress: 0.5}.String())
	assert.Equal(t, "Failure[x] boom", Event{Kind: Failure, Key: "x", Message: "boom"}.String())
}

func TestMulti(t *testing.T) {
	var a, b []Event
	d := Multi(
		DispatcherFunc(func(evt Event) { a = append(a, evt) }),
		nil,
		DispatcherFunc(func(evt Event) { b = append(b, evt) }),
	)
	evt := Event{Kind: Success, Key: "k"}
	d.Emit(evt)
	assert.Equal(t, []Event{evt}, a)
	assert.Equal(t, []Event{evt}, b)
	Nop.Emit(evt)
}

func TestStore(t *testing.T) {
	t.Run("loader", func(t *testing.T) {
		s := NewStore(0)
		assert.False(t, s.Loading(""))
		s.Emit(Event{Kind: LoaderEnabled})
		s.Emit(Event{Kind: LoaderEnabled})
		assert.True(t, s.Loading(""))
		assert.False(t, s.Loading("other"))
		s.Emit(Event{Kind: LoaderDisabled})
		assert.True(t, s.Loading(""))
		s.Emit(Event{Kind: LoaderDisabled})
		assert.False(t, s.Loading(""))
		s.Emit(Event{Kind: LoaderDisabled})
		assert.False(t, s.Loading(""))
	})
	t.Run("progress", func(t *testing.T) {
		s := NewStore(0)
		_, ok := s.Progress("up")
		assert.False(t, ok)
		s.Emit(Event{Kind: Progress, Key: "up", Progress: 0.25})
		x, ok := s.Progress("up")
		assert.True(t, ok)
		assert.Equal(t, 0.25, x)
		_, ok = s.Progress("")
		assert.False(t, ok)
	})
	t.Run("notifications", func(t *testing.T) {
		s := NewStore(time.Hour)
		s.Emit(Event{Kind: Success, Key: "a", Message: "one"})
		s.Emit(Event{Kind: Failure, Key: "b", Message: "two"})
		s.Emit(Event{Kind: Failure, Key: "a", Message: "three"})
		notes := s.Notifications("a")
		require.Len(t, notes, 2)
		assert.Equal(t, "one", notes[0].Message)
		assert.Equal(t, "three", notes[1].Message)
		assert.Len(t, s.Notifications("b"), 1)
		assert.Empty(t, s.Notifications(""))
	})
	t.Run("notification expiry", func(t *testing.T) {
		s := NewStore(20 * time.Millisecond)
		s.Emit(Event{Kind: Success, Message: "short lived"})
		assert.Len(t, s.Notifications(""), 1)
		time.Sleep(40 * time.Millisecond)
		assert.Empty(t, s.Notifications(""))
	})
	t.Run("listeners are keyed", func(t *testing.T) {
		s := NewStore(0)
		var a, def []Event
		cancelA := s.Listen("a", func(evt Event) { a = append(a, evt) })
		s.Listen("", func(evt Event) { def = append(def, evt) })
		s.Emit(Event{Kind: LoaderEnabled, Key: "a"})
		s.Emit(Event{Kind: LoaderEnabled, Key: "b"})
		s.Emit(Event{Kind: LoaderEnabled})
		assert.Equal(t, []Event{{Kind: LoaderEnabled, Key: "a"}}, a)
		assert.Equal(t, []Event{{Kind: LoaderEnabled}}, def)
		cancelA()
		s.Emit(Event{Kind: LoaderDisabled, Key: "a"})
		assert.Len(t, a, 1)
		assert.Panics(t, func() { s.Listen("a", nil) })
	})
	t.Run("concurrent keys", func(t *testing.T) {
		s := NewStore(0)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			key := fmt.Sprintf("call-%d", i%5)
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Emit(Event{Kind: LoaderEnabled, Key: key})
				s.Emit(Event{Kind: Progress, Key: key, Progress: 1})
				s.Emit(Event{Kind: LoaderDisabled, Key: key})
			}()
		}
		wg.Wait()
		for i := 0; i < 5; i++ {
			key := fmt.Sprintf("call-%d", i)
			assert.False(t, s.Loading(key), key)
			x, ok := s.Progress(key)
			assert.True(t, ok)
			assert.Equal(t, 1.0, x)
		}
	})
}
