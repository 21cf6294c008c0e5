package popbal

import (
	"time"

	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/geography"
)

// NeighborhoodResult is the outcome of balancing one neighborhood.
type NeighborhoodResult[R any] struct {
	// Neighborhood is the balanced neighborhood.
	Neighborhood geography.Neighborhood

	// Groups holds, per base element, the kept sample. Its distinct weight
	// handles carry the balanced continuous weights and the discretized counts.
	Groups map[int]*balance.Group[R]

	// Balancer is the composite balancer of the kept attempt.
	Balancer *balance.CompositeBalancer[R]

	// Convergence is the merged convergence information of the kept attempt.
	Convergence *balance.ConvergenceInfo

	// Attempts is the number of attempts made.
	Attempts int

	// Converged reports whether the kept attempt converged in every dimension.
	Converged bool

	// Score is the weighted total relative error of the kept attempt.
	Score float64

	// Duration is the wall time of the neighborhood task.
	Duration time.Duration

	// Err is non-nil when the task failed; it wraps ErrNeighborhoodFailed.
	// Fields set before the failure are left as they were.
	Err error
}

// Outcome classifies the result as OutcomeConverged, OutcomeBestEffort or OutcomeFailed.
func (r *NeighborhoodResult[R]) Outcome() string {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case r.Converged:
		return OutcomeConverged
	default:
		return OutcomeBestEffort
	}
}

// Result is the outcome of a run.
type Result[R any] struct {
	// Neighborhoods holds one result per neighborhood, ordered by id.
	Neighborhoods []*NeighborhoodResult[R]
}

// Failed returns the neighborhoods whose task failed.
func (r *Result[R]) Failed() []*NeighborhoodResult[R] {
	var out []*NeighborhoodResult[R]
	for _, nr := range r.Neighborhoods {
		if nr.Err != nil {
			out = append(out, nr)
		}
	}

	return out
}

// Reports builds one NeighborhoodReport per neighborhood.
func (r *Result[R]) Reports() []NeighborhoodReport {
	out := make([]NeighborhoodReport, len(r.Neighborhoods))
	for i, nr := range r.Neighborhoods {
		out[i] = NewNeighborhoodReport(nr)
	}

	return out
}

// Summary aggregates the reports of every neighborhood.
func (r *Result[R]) Summary() AggregateReport {
	return AggregateSummary(r.Reports())
}
