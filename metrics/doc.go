// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics exposes Prometheus collectors for workflow operations,
event delivery and HTTP requests.

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mux.Handle("GET /metrics", m.Handler())

All methods accept a nil receiver so tests can run without a registry.
*/
package metrics
