// Package metrics defines the sinks recording search progress. Sinks like
// PromSink and InfluxSink (infra/metrics) record improving solutions,
// phase summaries and run outcomes and can be combined with NewMultiSink.
// NewMetricsSink returns a MultiSink automatically when several sinks are
// configured.
package metrics
