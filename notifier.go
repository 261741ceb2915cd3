// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcalls

import (
	"fmt"
	"time"

	"github.com/gogama/httpcalls/dispatch"
	"github.com/gogama/httpcalls/request"
)

// A notifier translates the lifecycle of one request into dispatch
// events: loader enabled on start, progress while uploading, a success
// or failure notification at the end, and loader disabled exactly once
// after that.
type notifier struct {
	d        dispatch.Dispatcher
	key      string
	loader   bool
	progress bool
	notify   bool
	started  bool
	ended    bool
}

func newNotifier(d dispatch.Dispatcher, key string, loader, progress, notify bool) *notifier {
	if d == nil {
		d = dispatch.Nop
	}
	return &notifier{
		d:        d,
		key:      key,
		loader:   loader,
		progress: progress,
		notify:   notify,
	}
}

func planNotifier(d dispatch.Dispatcher, p *request.Plan) *notifier {
	if p.Dispatcher != nil {
		d = p.Dispatcher
	}
	return newNotifier(d, p.CallName, p.WithLoader, p.WithProgress, p.WithNotifications)
}

func (n *notifier) start() {
	if n.started {
		return
	}
	n.started = true
	if n.loader {
		n.emit(dispatch.Event{Kind: dispatch.LoaderEnabled})
	}
}

func (n *notifier) emitProgress(x float64) {
	if n.progress {
		n.emit(dispatch.Event{Kind: dispatch.Progress, Progress: x})
	}
}

func (n *notifier) succeed(status int) {
	if n.ended {
		return
	}
	if n.notify {
		n.emit(dispatch.Event{
			Kind:    dispatch.Success,
			Message: fmt.Sprintf("Request completed successfully (%d)", status),
		})
	}
	n.end()
}

func (n *notifier) fail(err error) {
	if n.ended {
		return
	}
	if n.notify {
		n.emit(dispatch.Event{
			Kind:    dispatch.Failure,
			Message: "Request failed: " + err.Error(),
		})
	}
	n.end()
}

// preflight reports an error detected before the first attempt. The
// loader, if requested, is still switched on and off once.
func (n *notifier) preflight(err error) {
	n.start()
	n.fail(err)
}

func (n *notifier) end() {
	n.ended = true
	if n.loader && n.started {
		n.emit(dispatch.Event{Kind: dispatch.LoaderDisabled})
	}
}

func (n *notifier) emit(evt dispatch.Event) {
	evt.Key = n.key
	evt.At = time.Now()
	n.d.Emit(evt)
}
