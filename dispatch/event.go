// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"fmt"
	"time"
)

// A Kind identifies the type of a lifecycle Event.
type Kind int

const (
	// LoaderEnabled is emitted once when a request with the loader flag
	// set begins its first attempt.
	LoaderEnabled Kind = iota
	// LoaderDisabled is emitted exactly once when a request with the
	// loader flag set reaches a terminal state, whatever the outcome.
	LoaderDisabled
	// Progress is emitted for each upload progress update of a request
	// with the progress flag set. Event.Progress holds the fraction.
	Progress
	// Success is emitted when a request with the notifications flag set
	// completes successfully. Event.Message holds the notification text.
	Success
	// Failure is emitted when a request with the notifications flag set
	// ends in error. Event.Message holds the error's message.
	Failure
	kindSentinel
)

var kindNames = []string{
	"LoaderEnabled",
	"LoaderDisabled",
	"Progress",
	"Success",
	"Failure",
}

// Kinds returns all lifecycle event kinds.
func Kinds() []Kind {
	return []Kind{LoaderEnabled, LoaderDisabled, Progress, Success, Failure}
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindSentinel {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Notification reports whether the kind is a success or failure
// notification.
func (k Kind) Notification() bool {
	return k == Success || k == Failure
}

// An Event is a discrete lifecycle notification emitted to a Dispatcher.
//
// Key is the call name of the request the event belongs to. The empty
// key is the unlabeled default channel used by requests without a call
// name.
type Event struct {
	Kind     Kind
	Key      string
	Progress float64
	Message  string
	At       time.Time
}

// String renders the event in a compact, log-friendly form.
func (evt Event) String() string {
	key := evt.Key
	if key == "" {
		key = "-"
	}
	switch evt.Kind {
	case Progress:
		return fmt.Sprintf("%s[%s] %.3f", evt.Kind, key, evt.Progress)
	case Success, Failure:
		return fmt.Sprintf("%s[%s] %s", evt.Kind, key, evt.Message)
	default:
		return fmt.Sprintf("%s[%s]", evt.Kind, key)
	}
}
