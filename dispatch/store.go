// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultNotificationTTL is how long a Store keeps a notification when
// no TTL is given to NewStore.
const DefaultNotificationTTL = 5 * time.Second

// A Store is a Dispatcher which keeps per-key application state derived
// from lifecycle events: whether a loader is showing, the latest upload
// progress, and recent notifications. It stands in for the external
// state broadcaster of a UI application.
//
// State is tracked separately for every key (call name), so concurrent
// requests with different call names never affect each other's state.
// Requests without a call name share the unlabeled default key "".
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	lock      sync.Mutex
	loading   map[string]int
	progress  map[string]float64
	listeners map[string]map[uint64]func(Event)
	nextID    uint64
	seq       uint64
	notes     *cache.Cache
	ttl       time.Duration
}

// NewStore creates an empty Store whose notifications expire after ttl.
// If ttl is not positive, DefaultNotificationTTL is used.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &Store{
		loading:   make(map[string]int),
		progress:  make(map[string]float64),
		listeners: make(map[string]map[uint64]func(Event)),
		notes:     cache.New(ttl, 2*ttl),
		ttl:       ttl,
	}
}

// Emit applies evt to the state for evt.Key and then passes it to every
// listener registered for that key.
func (s *Store) Emit(evt Event) {
	s.lock.Lock()
	switch evt.Kind {
	case LoaderEnabled:
		s.loading[evt.Key]++
	case LoaderDisabled:
		if n := s.loading[evt.Key]; n > 1 {
			s.loading[evt.Key] = n - 1
		} else {
			delete(s.loading, evt.Key)
		}
	case Progress:
		s.progress[evt.Key] = evt.Progress
	case Success, Failure:
		s.seq++
		s.notes.Set(noteKey(evt.Key, s.seq), evt, s.ttl)
	}
	fs := make([]func(Event), 0, len(s.listeners[evt.Key]))
	for _, f := range s.listeners[evt.Key] {
		fs = append(fs, f)
	}
	s.lock.Unlock()

	for _, f := range fs {
		f(evt)
	}
}

// Loading reports whether at least one request with call name key has
// its loader enabled.
func (s *Store) Loading(key string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.loading[key] > 0
}

// Progress returns the most recent progress fraction reported for key,
// and whether any progress has been reported at all.
func (s *Store) Progress(key string) (float64, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	x, ok := s.progress[key]
	return x, ok
}

// Notifications returns the unexpired notifications for key, oldest
// first.
func (s *Store) Notifications(key string) []Event {
	prefix := key + "\x00"
	items := s.notes.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	evts := make([]Event, len(ids))
	for i, id := range ids {
		evts[i] = items[id].Object.(Event)
	}
	return evts
}

// Listen registers f to receive every event emitted for key. Events for
// other keys are never passed to f. The returned function removes the
// registration.
func (s *Store) Listen(key string, f func(Event)) (cancel func()) {
	if f == nil {
		panic("httpcalls/dispatch: nil listener")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nextID++
	id := s.nextID
	if s.listeners[key] == nil {
		s.listeners[key] = make(map[uint64]func(Event))
	}
	s.listeners[key][id] = f
	return func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		delete(s.listeners[key], id)
		if len(s.listeners[key]) == 0 {
			delete(s.listeners, key)
		}
	}
}

func noteKey(key string, seq uint64) string {
	return fmt.Sprintf("%s\x00%020d", key, seq)
}
