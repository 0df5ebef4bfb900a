// Package cli wires the pipeline into the eventpipe command: a single
// run, an interval loop with optional Prometheus metrics, and an export
// command reading saved run documents.
package cli
