// Package metrics provides types.MetricsCollector implementations.
package metrics
