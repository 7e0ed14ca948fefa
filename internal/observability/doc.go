// Package observability holds the Prometheus metrics of a pipeline run. The pipeline
// is a batch job, so the metrics are flushed to a node-exporter textfile at the end of
// a run instead of being served.
package observability
