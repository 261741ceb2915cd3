// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package dispatch defines the lifecycle events a request execution emits
to an external state broadcaster, and the narrow Dispatcher interface
that receives them.

The httpcalls client never depends on how application state is stored.
It emits Events, keyed by the request's call name, to whatever Dispatcher
it was given:

	store := dispatch.NewStore(5 * time.Second)
	client := &httpcalls.Client{Dispatcher: store}
	_, err := client.Get("/api/users").
		WithLoader(true).
		CallName("fetch_users").
		Send(ctx)
	...
	if store.Loading("fetch_users") {
		...
	}

Store is a reference Dispatcher that tracks loader, progress, and
notification state per key. Use DispatcherFunc to adapt a function, Nop
to discard events, and Multi to fan events out to several dispatchers.
*/
package dispatch
