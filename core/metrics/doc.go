// Package metrics defines the sinks recording tabu search progress and
// simulator estimates. Implementations such as the Prometheus and InfluxDB
// sinks live in infra/metrics and register themselves by name; the factory
// helpers return a MultiSink automatically when several sinks are
// configured.
package metrics
