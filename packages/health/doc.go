// Package health tracks the outcome of calls made by the request engine.
//
// A Monitor implements the engine's HealthReporter: it counts successes and
// failures per host, records latency histograms and can render its state in
// Prometheus text format.
package health
