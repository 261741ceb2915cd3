// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"github.com/gogama/httpcalls/request"
)

// A HandlerGroup holds one handler chain per Event. The zero value is
// an empty group ready to use.
//
// A Client executes a plan as a strict sequence: attempts never
// overlap, so for one execution the events arrive in the order
//
//	BeforeExecutionStart
//	BeforeAttempt, [AfterAttemptTimeout], AfterAttempt, [BeforeBackoff]
//	... repeated once per attempt ...
//	AfterExecutionEnd
//
// where AfterAttemptTimeout fires only for an attempt that ran out of
// time and BeforeBackoff only when another attempt follows. Different
// executions may run concurrently on one Client and share its group.
//
// Install all handlers before the client is first used. A HandlerGroup
// is not safe for concurrent modification.
type HandlerGroup struct {
	chains [numEvents][]Handler
}

// PushBack appends h to the chain of evt. It panics if h is nil or evt
// is not one of the values returned by Events.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("httpcalls: nil handler")
	}
	if evt < 0 || int(evt) >= numEvents {
		panic("httpcalls: invalid event")
	}
	g.chains[evt] = append(g.chains[evt], h)
}

// PushBackAll appends h to the chain of every event.
func (g *HandlerGroup) PushBackAll(h Handler) {
	for _, evt := range Events() {
		g.PushBack(evt, h)
	}
}

// run calls the chain of evt in installation order. A nil group has no
// handlers.
func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	if g == nil {
		return
	}
	for _, h := range g.chains[evt] {
		h.Handle(evt, e)
	}
}

// A Handler reacts to an Event of a plan execution.
//
// Handle is called synchronously on the goroutine executing the plan,
// and the execution does not advance until it returns. The execution
// passed in is the live one, so a handler sees every field set by the
// events before it and may change the fields its event documents as
// changeable.
type Handler interface {
	Handle(Event, *request.Execution)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
