package popbal

import (
	"context"

	"github.com/arloliu/popbal/geography"
)

// AttemptReport describes one balancing attempt of a neighborhood.
type AttemptReport struct {
	// Neighborhood is the neighborhood id.
	Neighborhood int `json:"neighborhood"`

	// Attempt is the 1-based attempt number.
	Attempt int `json:"attempt"`

	// Converged reports whether every dimension of the attempt converged.
	Converged bool `json:"converged"`

	// Score is the attempt's weighted total relative error (lower is better).
	Score float64 `json:"score"`

	// Iterations is the largest per-dimension update count of the attempt.
	Iterations int `json:"iterations"`

	// Best reports whether the attempt is the best seen so far in its neighborhood.
	Best bool `json:"best"`
}

// Hooks defines callbacks for neighborhood events.
//
// All hooks are optional. They run synchronously on the worker goroutine of
// the neighborhood, so a slow hook delays that neighborhood only. Hooks of
// different neighborhoods run concurrently and must be safe for that.
//
// Hook behavior:
//   - Hook errors and panics are logged and never fail the neighborhood
//   - The context is the one passed to Synthesizer.Run
//
// Example:
//
//	hooks := &popbal.Hooks[Row]{
//	    OnNeighborhoodBalanced: func(ctx context.Context, r *popbal.NeighborhoodResult[Row]) error {
//	        return store.Save(ctx, r.Neighborhood.ID, r.Groups)
//	    },
//	}
type Hooks[R any] struct {
	// OnNeighborhoodBalanced is called once per neighborhood after discretization
	// with the final groups and convergence information.
	OnNeighborhoodBalanced func(ctx context.Context, result *NeighborhoodResult[R]) error

	// OnAttempt is called after every balancing attempt.
	OnAttempt func(ctx context.Context, report AttemptReport) error

	// OnError is called when a neighborhood fails or one of its hooks returns an error.
	OnError func(ctx context.Context, nb geography.Neighborhood, err error) error
}
