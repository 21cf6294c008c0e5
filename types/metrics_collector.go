package types

// MetricsCollector defines methods for recording balancing metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called concurrently from neighborhood worker goroutines and
// must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	BalanceMetrics
	RunMetrics
}

// BalanceMetrics defines metrics for individual balancing attempts.
type BalanceMetrics interface {
	// RecordBalanceAttempt records one balancing attempt of a neighborhood.
	//
	// Parameters:
	//   - converged: true if every dimension of the attempt converged
	RecordBalanceAttempt(converged bool)

	// RecordIterations records the number of weight-update sweeps an attempt used.
	//
	// Parameters:
	//   - iterations: Largest per-dimension update count of the attempt
	RecordIterations(iterations int)

	// RecordRelativeError records the weighted total relative error of an attempt.
	//
	// Parameters:
	//   - score: Sum over dimensions of Σ|measure × value| / Σ target
	RecordRelativeError(score float64)
}

// RunMetrics defines metrics for neighborhood tasks and the worker pool.
type RunMetrics interface {
	// RecordNeighborhoodDuration records the wall time of one neighborhood task.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	//   - outcome: Task outcome ("converged", "best_effort", "failed")
	RecordNeighborhoodDuration(duration float64, outcome string)

	// RecordNeighborhoodCount sets the number of neighborhoods of the current run (gauge metric).
	//
	// Parameters:
	//   - count: Number of independent neighborhoods
	RecordNeighborhoodCount(count int)

	// RecordActiveWorkers sets the number of neighborhood tasks currently running (gauge metric).
	//
	// Parameters:
	//   - count: Number of busy workers
	RecordActiveWorkers(count int)
}

// Neighborhood task outcomes reported through RecordNeighborhoodDuration.
const (
	OutcomeConverged  = "converged"
	OutcomeBestEffort = "best_effort"
	OutcomeFailed     = "failed"
)
