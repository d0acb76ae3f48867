// Package metrics exposes facility power and breach events as Prometheus
// metrics. Collector implements power.Observer and breach.Observer and
// provides a gRPC interceptor and a /metrics handler.
package metrics
