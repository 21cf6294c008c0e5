package metrics

import "github.com/arloliu/popbal/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. It is the default collector when none is configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// BalanceMetrics implementation

// RecordBalanceAttempt discards the attempt metric.
func (n *NopMetrics) RecordBalanceAttempt(_ /* converged */ bool) {}

// RecordIterations discards the iteration count.
func (n *NopMetrics) RecordIterations(_ /* iterations */ int) {}

// RecordRelativeError discards the attempt score.
func (n *NopMetrics) RecordRelativeError(_ /* score */ float64) {}

// RunMetrics implementation

// RecordNeighborhoodDuration discards the task duration.
func (n *NopMetrics) RecordNeighborhoodDuration(_ /* duration */ float64, _ /* outcome */ string) {}

// RecordNeighborhoodCount discards the neighborhood gauge.
func (n *NopMetrics) RecordNeighborhoodCount(_ /* count */ int) {}

// RecordActiveWorkers discards the busy worker gauge.
func (n *NopMetrics) RecordActiveWorkers(_ /* count */ int) {}
