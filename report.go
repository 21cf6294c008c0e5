package popbal

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// CategoryReport is the final state of one category.
type CategoryReport struct {
	Category string  `json:"category"`
	Target   float64 `json:"target"`
	Value    float64 `json:"value"`

	// PercentDiff is 100 × (value − target) / target. For a non-positive
	// target it is 0 when value equals target and ±100 otherwise.
	PercentDiff float64 `json:"percentDiff"`
}

// DimensionReport is the final state of one balancer dimension.
type DimensionReport struct {
	// Name is the merged dimension key "<balancer>/<dimension>".
	Name string `json:"name"`
	// Dimension is the classifier dimension name, which may itself contain '/'.
	Dimension  string           `json:"dimension"`
	Iterations int              `json:"iterations"`
	Converged  bool             `json:"converged"`
	Categories []CategoryReport `json:"categories"`
}

// NeighborhoodReport summarizes one neighborhood for logs and diagnostics.
type NeighborhoodReport struct {
	Neighborhood int               `json:"neighborhood"`
	Elements     int               `json:"elements"`
	Realized     int               `json:"realized"`
	Attempts     int               `json:"attempts"`
	Converged    bool              `json:"converged"`
	Score        float64           `json:"score"`
	Duration     time.Duration     `json:"duration"`
	Error        string            `json:"error,omitempty"`
	Dimensions   []DimensionReport `json:"dimensions"`
}

// NewNeighborhoodReport builds the report of one neighborhood result.
//
// Parameters:
//   - r: Neighborhood result (failed results produce a report without dimensions)
//
// Returns:
//   - NeighborhoodReport: Report value safe to marshal as JSON
func NewNeighborhoodReport[R any](r *NeighborhoodResult[R]) NeighborhoodReport {
	rep := NeighborhoodReport{
		Neighborhood: r.Neighborhood.ID,
		Attempts:     r.Attempts,
		Converged:    r.Converged,
		Score:        r.Score,
		Duration:     r.Duration,
	}
	if r.Err != nil {
		rep.Error = r.Err.Error()
	}

	for _, g := range r.Groups {
		rep.Elements += g.Len()
		for _, h := range g.Handles() {
			rep.Realized += h.Count()
		}
	}

	info := r.Convergence
	if info == nil {
		return rep
	}

	for _, dim := range info.Dimensions() {
		dr := DimensionReport{
			Name:       dim,
			Dimension:  info.DimensionName(dim),
			Iterations: info.Iterations(dim),
			Converged:  info.IsDimensionConverged(dim),
		}
		for _, cat := range info.Categories(dim) {
			s, _ := info.Current(dim, cat)
			dr.Categories = append(dr.Categories, CategoryReport{
				Category:    cat,
				Target:      s.Target,
				Value:       s.Value,
				PercentDiff: percentDiff(s.Target, s.Value),
			})
		}
		rep.Dimensions = append(rep.Dimensions, dr)
	}

	return rep
}

func percentDiff(target, value float64) float64 {
	if target > 0 {
		return 100 * (value - target) / target
	}

	switch {
	case value > target:
		return 100
	case value < target:
		return -100
	default:
		return 0
	}
}

// Iterations returns the largest iteration count over the report's dimensions.
func (r NeighborhoodReport) Iterations() int {
	n := 0
	for _, d := range r.Dimensions {
		n = max(n, d.Iterations)
	}

	return n
}

// String renders the per-neighborhood text summary.
func (r NeighborhoodReport) String() string {
	var sb strings.Builder

	status := "did not converge"
	switch {
	case r.Error != "":
		status = "failed"
	case r.Converged:
		status = "converged"
	}

	fmt.Fprintf(&sb, "neighborhood %d: %s after %d attempt(s), score %.6g, %d elements, %d realized, %s\n",
		r.Neighborhood, status, r.Attempts, r.Score, r.Elements, r.Realized, r.Duration.Round(time.Microsecond))
	if r.Error != "" {
		fmt.Fprintf(&sb, "  error: %s\n", r.Error)
	}

	for _, d := range r.Dimensions {
		state := "not converged"
		if d.Converged {
			state = "converged"
		}
		fmt.Fprintf(&sb, "  %s (%d iterations, %s)\n", d.Name, d.Iterations, state)
		for _, c := range d.Categories {
			fmt.Fprintf(&sb, "    %-16s target %12.3f  value %12.3f  diff %8.3f%%\n",
				c.Category, c.Target, c.Value, c.PercentDiff)
		}
	}

	return sb.String()
}

// CategoryError is the mean absolute percent difference of one category
// across neighborhoods.
type CategoryError struct {
	Dimension          string  `json:"dimension"`
	Category           string  `json:"category"`
	MeanAbsPercentDiff float64 `json:"meanAbsPercentDiff"`
	Samples            int     `json:"samples"`
}

// AggregateReport summarizes a list of neighborhood reports.
type AggregateReport struct {
	Neighborhoods   int             `json:"neighborhoods"`
	Converged       int             `json:"converged"`
	Failed          int             `json:"failed"`
	ConvergenceRate float64         `json:"convergenceRate"`
	MinIterations   int             `json:"minIterations"`
	MaxIterations   int             `json:"maxIterations"`
	AvgIterations   float64         `json:"avgIterations"`
	CategoryErrors  []CategoryError `json:"categoryErrors"`
}

// AggregateSummary aggregates neighborhood reports.
//
// The convergence rate counts every report; iteration statistics and
// category errors only cover reports that did not fail. Category errors are
// grouped by classifier dimension name, so the same dimension controlled at
// several target elements is averaged together.
//
// Parameters:
//   - reports: Neighborhood reports (e.g., Result.Reports())
//
// Returns:
//   - AggregateReport: Summary; zero-valued for an empty list
func AggregateSummary(reports []NeighborhoodReport) AggregateReport {
	agg := AggregateReport{Neighborhoods: len(reports)}
	if len(reports) == 0 {
		return agg
	}

	type key struct{ dim, cat string }
	sums := make(map[key]float64)
	counts := make(map[key]int)

	totalIterations, counted := 0, 0
	agg.MinIterations = math.MaxInt
	for i := range reports {
		r := &reports[i]
		if r.Error != "" {
			agg.Failed++

			continue
		}
		if r.Converged {
			agg.Converged++
		}

		it := r.Iterations()
		agg.MinIterations = min(agg.MinIterations, it)
		agg.MaxIterations = max(agg.MaxIterations, it)
		totalIterations += it
		counted++

		for _, d := range r.Dimensions {
			for _, c := range d.Categories {
				k := key{d.Dimension, c.Category}
				sums[k] += math.Abs(c.PercentDiff)
				counts[k]++
			}
		}
	}

	agg.ConvergenceRate = float64(agg.Converged) / float64(len(reports))
	if counted == 0 {
		agg.MinIterations = 0
	} else {
		agg.AvgIterations = float64(totalIterations) / float64(counted)
	}

	for k, sum := range sums {
		agg.CategoryErrors = append(agg.CategoryErrors, CategoryError{
			Dimension:          k.dim,
			Category:           k.cat,
			MeanAbsPercentDiff: sum / float64(counts[k]),
			Samples:            counts[k],
		})
	}
	slices.SortFunc(agg.CategoryErrors, func(a, b CategoryError) int {
		if c := strings.Compare(a.Dimension, b.Dimension); c != 0 {
			return c
		}

		return strings.Compare(a.Category, b.Category)
	})

	return agg
}

// String renders the aggregate text summary.
func (a AggregateReport) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d neighborhoods: %d converged (%.1f%%), %d failed\n",
		a.Neighborhoods, a.Converged, 100*a.ConvergenceRate, a.Failed)
	fmt.Fprintf(&sb, "iterations: min %d, avg %.1f, max %d\n",
		a.MinIterations, a.AvgIterations, a.MaxIterations)

	for _, c := range a.CategoryErrors {
		fmt.Fprintf(&sb, "  %s/%-16s mean |diff| %8.3f%% over %d\n",
			c.Dimension, c.Category, c.MeanAbsPercentDiff, c.Samples)
	}

	return sb.String()
}
