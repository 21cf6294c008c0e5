package popbal

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/discretize"
	"github.com/arloliu/popbal/geography"
	"github.com/arloliu/popbal/internal/hash"
	"github.com/arloliu/popbal/internal/hooks"
	"github.com/arloliu/popbal/internal/logging"
	"github.com/arloliu/popbal/internal/metrics"
)

// Synthesizer balances a population neighborhood by neighborhood.
//
// A run partitions the base geography into independent neighborhoods and
// balances them on a fixed pool of workers. Per neighborhood it draws
// representative samples, balances them against every control set, retries
// non-converging attempts keeping the best-scored one, and discretizes the
// kept weights into integer counts.
//
// A Synthesizer may run several times; runs must not overlap when the
// collaborators are not safe for that.
type Synthesizer[R any] struct {
	cfg         Config
	inputs      Inputs[R]
	hooks       Hooks[R]
	classifiers []balance.Classifier[R]
	// criteria[i] holds the stopping criteria of inputs.Controls[i].
	criteria    []map[string]balance.Criteria
	// targets[i] indexes the target elements of inputs.Controls[i].
	targets     []*geography.TargetIndex
	discretizer discretize.Discretizer
	metrics     MetricsCollector
	logger      Logger

	active    atomic.Int64
	total     atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	running   atomic.Bool
}

// Progress is a point-in-time view of a run.
type Progress struct {
	Running   bool `json:"running"`
	Total     int  `json:"total"`
	Completed int  `json:"completed"`
	Failed    int  `json:"failed"`
	Active    int  `json:"active"`
}

// Progress returns the state of the current or most recent run.
//
// It is safe to call from any goroutine while Run is in progress.
func (s *Synthesizer[R]) Progress() Progress {
	return Progress{
		Running:   s.running.Load(),
		Total:     int(s.total.Load()),
		Completed: int(s.completed.Load()),
		Failed:    int(s.failed.Load()),
		Active:    int(s.active.Load()),
	}
}

// NewSynthesizer creates a synthesizer for one set of inputs.
//
// The configuration is completed with SetDefaults and validated; cfg is
// modified in place and copied.
//
// Parameters:
//   - cfg: Configuration (required)
//   - inputs: Geography, control sets and collaborators
//   - opts: Optional configuration (WithLogger, WithMetrics, WithDiscretizer)
//
// Returns:
//   - *Synthesizer[R]: Synthesizer ready to Run
//   - error: ErrInvalidConfig, a missing-collaborator error, ErrNoControls,
//     ErrDuplicateDimension or ErrDimensionMismatch
//
// Example:
//
//	cfg := popbal.DefaultConfig()
//	synth, err := popbal.NewSynthesizer(&cfg, popbal.Inputs[Row]{
//	    Base:     blockGroups,
//	    Controls: []popbal.ControlSet[Row]{{Mapping: tracts, Classifiers: classifiers}},
//	    Targets:  targetRows,
//	    Elements: seedPools,
//	    Totals:   householdCounts,
//	})
//	if err != nil { /* handle */ }
//	result, err := synth.Run(ctx)
func NewSynthesizer[R any](cfg *Config, inputs Inputs[R], opts ...Option) (*Synthesizer[R], error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if inputs.Base == nil {
		return nil, ErrGeographyRequired
	}
	if inputs.Targets == nil {
		return nil, ErrTargetSourceRequired
	}
	if inputs.Elements == nil {
		return nil, ErrElementSourceRequired
	}
	if inputs.Totals == nil {
		return nil, ErrTotalSourceRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	options := &synthOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	discretizer := options.discretizer
	if discretizer == nil {
		discretizer = discretize.NewStochastic()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	s := &Synthesizer[R]{
		cfg:         *cfg,
		inputs:      inputs,
		discretizer: discretizer,
		metrics:     metricsCollector,
		logger:      loggerInstance,
	}
	if inputs.Hooks != nil {
		s.hooks = *inputs.Hooks
	}

	if err := s.collectControls(); err != nil {
		return nil, err
	}

	return s, nil
}

// collectControls validates the control sets and derives per-set criteria.
func (s *Synthesizer[R]) collectControls() error {
	if len(s.inputs.Controls) == 0 {
		return ErrNoControls
	}

	seen := make(map[string]struct{})
	for i, cs := range s.inputs.Controls {
		if cs.Mapping == nil {
			return fmt.Errorf("control set %d: %w", i, ErrMappingRequired)
		}

		names := make([]string, 0, len(cs.Classifiers))
		for _, c := range cs.Classifiers {
			name := c.Name()
			if _, dup := seen[name]; dup {
				return fmt.Errorf("dimension %q: %w", name, ErrDuplicateDimension)
			}
			seen[name] = struct{}{}
			names = append(names, name)
			s.classifiers = append(s.classifiers, c)
		}
		s.criteria = append(s.criteria, s.cfg.criteria(names))
		s.targets = append(s.targets, geography.NewTargetIndex(cs.Mapping))
	}

	if len(s.classifiers) == 0 {
		return ErrNoControls
	}

	if overrides := s.cfg.Convergence.Dimensions; len(overrides) > 0 {
		if len(overrides) != len(seen) {
			return fmt.Errorf("%d configured dimensions, %d classifiers: %w",
				len(overrides), len(seen), ErrDimensionMismatch)
		}
		for name := range overrides {
			if _, ok := seen[name]; !ok {
				return fmt.Errorf("configured dimension %q has no classifier: %w", name, ErrDimensionMismatch)
			}
		}
	}

	return nil
}

// Neighborhoods returns the partition of the base geography a run balances.
func (s *Synthesizer[R]) Neighborhoods() []geography.Neighborhood {
	mappings := make([]geography.Mapping, len(s.inputs.Controls))
	for i, cs := range s.inputs.Controls {
		mappings[i] = cs.Mapping
	}

	return geography.Partition(s.inputs.Base, mappings...)
}

// Run balances every neighborhood and blocks until all of them are done.
//
// Neighborhoods run concurrently on cfg.Workers workers. A neighborhood that
// fails (collaborator error or panic) does not affect the others; its
// NeighborhoodResult.Err is set and Hooks.OnError is called. A neighborhood
// that never converges is not a failure: its best attempt is kept.
//
// Balancing is not interruptible; ctx is checked once before the run starts
// and is otherwise only handed to collaborators and hooks.
//
// Parameters:
//   - ctx: Context passed to collaborators and hooks
//
// Returns:
//   - *Result[R]: One result per neighborhood, ordered by neighborhood id
//   - error: ctx.Err() if ctx is already done
func (s *Synthesizer[R]) Run(ctx context.Context) (*Result[R], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	nbs := s.Neighborhoods()
	s.total.Store(int64(len(nbs)))
	s.completed.Store(0)
	s.failed.Store(0)
	s.running.Store(true)
	defer s.running.Store(false)

	s.record("RecordNeighborhoodCount", func() {
		s.metrics.RecordNeighborhoodCount(len(nbs))
	})
	s.logger.Info("synthesis started",
		"neighborhoods", len(nbs),
		"workers", s.cfg.Workers,
		"retries", s.cfg.Retries,
	)

	results := xsync.NewMap[int, *NeighborhoodResult[R]]()

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for _, nb := range nbs {
		g.Go(func() error {
			results.Store(nb.ID, s.runNeighborhood(ctx, nb))

			return nil
		})
	}
	_ = g.Wait() // tasks never return errors; failures live on their results

	out := &Result[R]{Neighborhoods: make([]*NeighborhoodResult[R], 0, len(nbs))}
	converged, failed := 0, 0
	for _, nb := range nbs {
		r, _ := results.Load(nb.ID)
		out.Neighborhoods = append(out.Neighborhoods, r)
		switch r.Outcome() {
		case OutcomeConverged:
			converged++
		case OutcomeFailed:
			failed++
		}
	}

	s.logger.Info("synthesis finished",
		"neighborhoods", len(nbs),
		"converged", converged,
		"failed", failed,
		"duration", time.Since(start),
	)

	return out, nil
}

// runNeighborhood is the task boundary: it converts errors and panics into
// a failed result and records task metrics.
func (s *Synthesizer[R]) runNeighborhood(ctx context.Context, nb geography.Neighborhood) (result *NeighborhoodResult[R]) {
	start := time.Now()
	result = &NeighborhoodResult[R]{Neighborhood: nb}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("%w: neighborhood %d: panic: %v", ErrNeighborhoodFailed, nb.ID, r)
		}
		result.Duration = time.Since(start)

		if result.Err != nil {
			s.logger.Error("neighborhood failed",
				"neighborhood", nb.ID,
				"attempts", result.Attempts,
				"error", result.Err,
			)
			s.notifyError(ctx, nb, result.Err)
			s.failed.Add(1)
		}
		s.completed.Add(1)

		s.record("RecordNeighborhoodDuration", func() {
			s.metrics.RecordNeighborhoodDuration(result.Duration.Seconds(), result.Outcome())
		})
		active := s.active.Add(-1)
		s.record("RecordActiveWorkers", func() {
			s.metrics.RecordActiveWorkers(int(active))
		})
	}()

	s.metrics.RecordActiveWorkers(int(s.active.Add(1)))
	s.logger.Debug("neighborhood started", "neighborhood", nb.ID, "elements", len(nb.Elements))

	if err := s.balanceNeighborhood(ctx, nb, start, result); err != nil {
		result.Err = fmt.Errorf("%w: neighborhood %d: %w", ErrNeighborhoodFailed, nb.ID, err)
	}

	return result
}

// record calls a metrics method outside any neighborhood's balancing, where a
// panic could not fail a task; the panic is logged and dropped.
func (s *Synthesizer[R]) record(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("metrics collector panicked", "method", name, "panic", r)
		}
	}()
	fn()
}

type attempt[R any] struct {
	groups    map[int]*balance.Group[R]
	balancer  *balance.CompositeBalancer[R]
	converged bool
	score     float64
}

func (s *Synthesizer[R]) balanceNeighborhood(ctx context.Context, nb geography.Neighborhood, start time.Time, result *NeighborhoodResult[R]) error {
	rng := hash.NewRand(s.cfg.Seed, uint64(nb.ID)) //nolint:gosec // neighborhood ids are non-negative

	var best *attempt[R]
	for n := 1; n <= s.cfg.Retries+1; n++ {
		a, err := s.attempt(ctx, nb, rng)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", n, err)
		}
		result.Attempts = n

		info := a.balancer.ConvergenceInfo()
		a.converged = info.IsConverged()
		a.score = info.WeightedRelativeError()
		iterations := info.MaxIterations()

		s.metrics.RecordBalanceAttempt(a.converged)
		s.metrics.RecordIterations(iterations)
		s.metrics.RecordRelativeError(a.score)

		isBest := best == nil || a.converged || a.score < best.score
		if isBest {
			best = a
		}

		report := AttemptReport{
			Neighborhood: nb.ID,
			Attempt:      n,
			Converged:    a.converged,
			Score:        a.score,
			Iterations:   iterations,
			Best:         isBest,
		}
		s.notify(ctx, nb, "OnAttempt", func(ctx context.Context) error {
			if s.hooks.OnAttempt == nil {
				return nil
			}

			return s.hooks.OnAttempt(ctx, report)
		})

		if a.converged {
			break
		}

		s.logger.Debug("attempt did not converge",
			"neighborhood", nb.ID,
			"attempt", n,
			"score", a.score,
			"iterations", iterations,
		)
	}

	result.Groups = best.groups
	result.Balancer = best.balancer
	result.Convergence = best.balancer.ConvergenceInfo()
	result.Converged = best.converged
	result.Score = best.score

	if !best.converged {
		s.logger.Warn("neighborhood did not converge, keeping best attempt",
			"neighborhood", nb.ID,
			"attempts", result.Attempts,
			"score", best.score,
		)
	}

	for _, b := range nb.Elements {
		total, err := s.inputs.Totals.Total(ctx, b)
		if err != nil {
			return fmt.Errorf("total of base element %d: %w", b, err)
		}
		if err := s.discretizer.Discretize(best.groups[b].Handles(), total, rng); err != nil {
			return fmt.Errorf("discretize base element %d: %w", b, err)
		}
	}

	best.balancer.UpdateControlsAndTargets()
	result.Duration = time.Since(start)

	s.notify(ctx, nb, "OnNeighborhoodBalanced", func(ctx context.Context) error {
		if s.hooks.OnNeighborhoodBalanced == nil {
			return nil
		}

		return s.hooks.OnNeighborhoodBalanced(ctx, result)
	})

	s.logger.Info("neighborhood balanced",
		"neighborhood", nb.ID,
		"converged", best.converged,
		"attempts", result.Attempts,
		"score", best.score,
	)

	return nil
}

// attempt draws fresh samples for every base element of nb, builds one
// balancer per target element of every control set, and balances them together.
func (s *Synthesizer[R]) attempt(ctx context.Context, nb geography.Neighborhood, rng *rand.Rand) (*attempt[R], error) {
	pools, err := s.inputs.Elements.Pools(ctx, nb)
	if err != nil {
		return nil, fmt.Errorf("element pools: %w", err)
	}

	groups := make(map[int]*balance.Group[R], len(nb.Elements))
	for _, b := range nb.Elements {
		pool := pools[b]
		if pool == nil {
			pool = balance.NewGroup[R]()
		}
		sample := balance.BuildRepresentativeSample(pool, s.classifiers, s.inputs.Filters, s.cfg.SampleSize, rng)
		groups[b] = sample.FreshCopy()
	}

	var children []*balance.Balancer[R]
	for i, cs := range s.inputs.Controls {
		level := cs.Mapping.Level()
		for _, target := range s.targets[i].Within(nb) {
			basis := nb.BasisWithin(cs.Mapping, target)
			parts := make([]*balance.Group[R], len(basis))
			for j, b := range basis {
				parts[j] = groups[b]
			}

			row, err := s.inputs.Targets.TargetRow(ctx, level, target)
			if err != nil {
				return nil, fmt.Errorf("target row %s/%d: %w", level, target, err)
			}

			child, err := balance.NewBalancer(
				fmt.Sprintf("%s-%d", level, target),
				balance.NewGroup[R]().Join(parts...),
				cs.Classifiers,
				row,
				s.criteria[i],
				balance.WithWeightLimitFactor(s.cfg.WeightLimitFactor),
				balance.WithBalancerLogger(s.logger),
			)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	}

	composite := balance.NewCompositeBalancer(fmt.Sprintf("neighborhood-%d", nb.ID), children...)

	for _, g := range groups {
		g.Reset()
	}
	composite.Balance()

	return &attempt[R]{groups: groups, balancer: composite}, nil
}

// notify runs a hook and forwards its failure to OnError.
func (s *Synthesizer[R]) notify(ctx context.Context, nb geography.Neighborhood, name string, fn func(context.Context) error) {
	if err := hooks.Call(ctx, s.logger, name, fn); err != nil {
		s.notifyError(ctx, nb, err)
	}
}

func (s *Synthesizer[R]) notifyError(ctx context.Context, nb geography.Neighborhood, err error) {
	if s.hooks.OnError == nil {
		return
	}
	_ = hooks.Call(ctx, s.logger, "OnError", func(ctx context.Context) error {
		return s.hooks.OnError(ctx, nb, err)
	})
}
