// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dispatch

// A Dispatcher receives lifecycle events from request executions.
//
// Implementations of Dispatcher must be safe for concurrent use by
// multiple goroutines, since one dispatcher is typically shared by every
// request a client makes. Emit should return quickly: it is called on
// the goroutine executing the request (and, for progress events, on
// the goroutine the transport uses to write the request body).
type Dispatcher interface {
	Emit(evt Event)
}

// The DispatcherFunc type is an adapter to allow the use of ordinary
// functions as dispatchers.
type DispatcherFunc func(Event)

// Emit calls f(evt).
func (f DispatcherFunc) Emit(evt Event) {
	f(evt)
}

// Nop is a dispatcher that discards every event. The client uses it
// when no dispatcher is configured.
var Nop Dispatcher = nop{}

type nop struct{}

func (nop) Emit(Event) {}

// Multi returns a dispatcher that emits each event to every non-nil
// dispatcher in ds, in order.
func Multi(ds ...Dispatcher) Dispatcher {
	m := make(multi, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			m = append(m, d)
		}
	}
	return m
}

type multi []Dispatcher

func (m multi) Emit(evt Event) {
	for _, d := range m {
		d.Emit(evt)
	}
}
