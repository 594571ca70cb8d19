// Package monitor implements the bounded-window performance monitor of the
// orchestration engine: three independent fixed-capacity ring buffers for
// response times, conversions and errors, aggregate Snapshot computation, and
// an optional Prometheus exporter for observability tooling.
//
// The monitor is process-wide shared mutable state; all mutations are
// serialized internally so call sites never coordinate. Metrics and memory
// persistence are both best-effort and never span a transaction.
package monitor
