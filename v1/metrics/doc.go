// Package metrics exposes the measurements of a round-trip run to Prometheus.
//
// Every run owns a private registry; all series carry a constant "service"
// label. The collectors are:
//
//   - roundtrip_produce_duration_seconds{topic}: one sample per worker produce phase
//   - roundtrip_checks_total{check,result}: verification outcomes, result is pass or fail
//   - roundtrip_messages_total{topic,direction}: produced and consumed messages
//   - roundtrip_worker_errors_total{phase}: worker cycles aborted by an error
//
// The harness depends on the Recorder interface only; Nop satisfies it for
// callers that do not want metrics.
//
// With fx, metrics.FXModule provides *Metrics and Recorder and serves
// /metrics on Config.Address while the app runs.
package metrics
