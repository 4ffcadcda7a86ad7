// Package metrics provides the observability hooks of the build pipeline and the watch loop.
//
// Components receive a Recorder and default to NoopRecorder, so metrics never require
// nil checks at call sites:
//
//	b := build.New(s, composer, metrics.NoopRecorder{})
//
// The dev command swaps in a PrometheusRecorder when --metrics-addr is set and serves the
// registry through HTTPHandler.
package metrics
