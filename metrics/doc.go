// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics records Prometheus metrics about the requests an
httpcalls.Client executes.

Install a Collector into the client's handler group:

	c := metrics.NewCollector("myapp", nil)
	c.Install(client.Handlers)

The collector counts finished requests and individual attempts by call
name and outcome, counts attempt timeouts and retries, tracks requests
in flight, and observes end-to-end request latency.
*/
package metrics
