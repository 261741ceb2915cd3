// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/Laisky/errors/v2"
	"github.com/gogama/httpcalls"
	"github.com/gogama/httpcalls/dispatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// A printer is a dispatcher writing lifecycle events to a terminal.
type printer struct {
	lock sync.Mutex
	w    io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) Emit(evt dispatch.Event) {
	p.lock.Lock()
	defer p.lock.Unlock()
	switch evt.Kind {
	case dispatch.Progress:
		fmt.Fprintf(p.w, "progress %5.1f%%\n", evt.Progress*100)
	case dispatch.LoaderEnabled:
		fmt.Fprintln(p.w, "loading...")
	case dispatch.LoaderDisabled:
		fmt.Fprintln(p.w, "done")
	default:
		fmt.Fprintln(p.w, evt.String())
	}
}

// response writes the status line and headers of r.
func (p *printer) response(r *httpcalls.Response) {
	p.lock.Lock()
	defer p.lock.Unlock()
	fmt.Fprintf(p.w, "%d %s\n", r.Status, r.URL)
	names := make([]string, 0, len(r.Header))
	for k := range r.Header {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		for _, v := range r.Header[k] {
			fmt.Fprintf(p.w, "%s: %s\n", k, v)
		}
	}
}

func (p *printer) metrics(g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(p.w, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
