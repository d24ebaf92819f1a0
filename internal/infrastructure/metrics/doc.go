// Package metrics exposes Prometheus metrics for the extensions plugin.
//
// Collectors are registered on the default registry at init, so any
// package can record through the helper functions without wiring, and
// promhttp.Handler() serves them (the API mounts it at /metrics).
//
// Label values are bounded: ids of individual devices never become labels.
package metrics
