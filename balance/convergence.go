package balance

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/popbal/types"
)

// ZeroTargetEpsilon normalizes the deviation of categories whose target is not positive.
//
// A zero-target category with a zero value measures 0 (converged); any
// other value measures |value − target| / ZeroTargetEpsilon.
const ZeroTargetEpsilon = 1e-9

// Criteria configures when one dimension stops balancing.
type Criteria struct {
	// Criterion is the largest convergence measure every category must reach.
	Criterion float64 `yaml:"criterion" json:"criterion"`

	// MaxIterations caps the number of counted updates of the dimension.
	MaxIterations int `yaml:"maxIterations" json:"maxIterations"`
}

// Snapshot is the state of one category captured at an update.
type Snapshot struct {
	Target  float64 `json:"target"`
	Value   float64 `json:"value"`
	Measure float64 `json:"measure"`
}

// ComputeConvergenceMeasure returns |value/target − 1| for positive targets
// and |value − target| / ZeroTargetEpsilon otherwise.
func ComputeConvergenceMeasure(target, value float64) float64 {
	if target > 0 {
		return math.Abs(value/target - 1)
	}

	return math.Abs(value-target) / ZeroTargetEpsilon
}

type dimensionState struct {
	name       string
	criteria   Criteria
	categories []string
	current    map[string]Snapshot
	previous   map[string]Snapshot
	updates    int
}

func (d *dimensionState) record(values map[string]float64, count bool) {
	for _, cat := range d.categories {
		cur := d.current[cat]
		d.previous[cat] = cur
		v := values[cat]
		d.current[cat] = Snapshot{Target: cur.Target, Value: v, Measure: ComputeConvergenceMeasure(cur.Target, v)}
	}
	if count {
		d.updates++
	}
}

func (d *dimensionState) converged() bool {
	if d.updates == 0 {
		return false
	}
	for _, cat := range d.categories {
		if d.current[cat].Measure > d.criteria.Criterion {
			return false
		}
	}

	return true
}

func (d *dimensionState) stopped() bool {
	return d.converged() || d.updates >= d.criteria.MaxIterations
}

// ConvergenceInfo tracks, per dimension and category, the target, the latest
// achieved value and its convergence measure, plus the snapshot before it.
//
// It only accumulates: values are replaced, counters only grow. A merged
// ConvergenceInfo (see MergeConvergenceInfo) shares its children's state, so
// updates through a child are visible through the merge.
type ConvergenceInfo struct {
	association string
	order       []string
	dims        map[string]*dimensionState
}

// NewConvergenceInfo creates the bookkeeping for one balancing unit.
//
// Parameters:
//   - association: Name of the unit (e.g., a geography element)
//   - targets: Dimension → category → target
//   - criteria: Dimension → stopping criteria
//
// Returns:
//   - *ConvergenceInfo: Tracker with every category at value 0 and no updates
//   - error: ErrDimensionMismatch if targets and criteria name different dimensions
func NewConvergenceInfo(
	association string,
	targets map[string]map[string]float64,
	criteria map[string]Criteria,
) (*ConvergenceInfo, error) {
	if len(targets) != len(criteria) {
		return nil, fmt.Errorf("%s: %d target dimensions, %d criteria dimensions: %w",
			association, len(targets), len(criteria), types.ErrDimensionMismatch)
	}
	for name := range targets {
		if _, ok := criteria[name]; !ok {
			return nil, fmt.Errorf("%s: no criteria for dimension %q: %w", association, name, types.ErrDimensionMismatch)
		}
	}

	info := &ConvergenceInfo{
		association: association,
		order:       make([]string, 0, len(targets)),
		dims:        make(map[string]*dimensionState, len(targets)),
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cats := make([]string, 0, len(targets[name]))
		for cat := range targets[name] {
			cats = append(cats, cat)
		}
		slices.Sort(cats)
		info.add(name, criteria[name], cats, targets[name])
	}

	return info, nil
}

func (c *ConvergenceInfo) add(name string, criteria Criteria, categories []string, targets map[string]float64) {
	d := &dimensionState{
		name:       name,
		criteria:   criteria,
		categories: categories,
		current:    make(map[string]Snapshot, len(categories)),
		previous:   make(map[string]Snapshot, len(categories)),
	}
	for _, cat := range categories {
		t := targets[cat]
		d.current[cat] = Snapshot{Target: t, Measure: ComputeConvergenceMeasure(t, 0)}
		d.previous[cat] = d.current[cat]
	}

	c.order = append(c.order, name)
	c.dims[name] = d
}

// MergeConvergenceInfo returns a live view over several trackers under one association.
//
// Each child dimension appears as "<child association>/<dimension>". The view
// shares the children's state; it reports converged exactly when every child does.
func MergeConvergenceInfo(association string, children ...*ConvergenceInfo) *ConvergenceInfo {
	merged := &ConvergenceInfo{
		association: association,
		dims:        make(map[string]*dimensionState),
	}
	for _, child := range children {
		for _, name := range child.order {
			key := child.association + "/" + name
			merged.order = append(merged.order, key)
			merged.dims[key] = child.dims[name]
		}
	}

	return merged
}

// Association returns the unit name the tracker reports under.
func (c *ConvergenceInfo) Association() string {
	return c.association
}

// Dimensions returns the dimension names in reporting order.
func (c *ConvergenceInfo) Dimensions() []string {
	return append([]string(nil), c.order...)
}

// DimensionName returns the classifier dimension a dimension key tracks. It
// differs from the key only in a merged view, where the key also names the
// child association. Unknown keys yield "".
func (c *ConvergenceInfo) DimensionName(dimension string) string {
	d, ok := c.dims[dimension]
	if !ok {
		return ""
	}

	return d.name
}

// Categories returns the categories of a dimension in reporting order.
func (c *ConvergenceInfo) Categories(dimension string) []string {
	d, ok := c.dims[dimension]
	if !ok {
		return nil
	}

	return append([]string(nil), d.categories...)
}

// Criteria returns the stopping criteria of a dimension.
func (c *ConvergenceInfo) Criteria(dimension string) (Criteria, bool) {
	d, ok := c.dims[dimension]
	if !ok {
		return Criteria{}, false
	}

	return d.criteria, true
}

// Current returns the latest snapshot of a category.
func (c *ConvergenceInfo) Current(dimension, category string) (Snapshot, bool) {
	d, ok := c.dims[dimension]
	if !ok {
		return Snapshot{}, false
	}
	s, ok := d.current[category]

	return s, ok
}

// Previous returns the snapshot preceding the latest one.
func (c *ConvergenceInfo) Previous(dimension, category string) (Snapshot, bool) {
	d, ok := c.dims[dimension]
	if !ok {
		return Snapshot{}, false
	}
	s, ok := d.previous[category]

	return s, ok
}

// Iterations returns the number of counted updates of a dimension.
func (c *ConvergenceInfo) Iterations(dimension string) int {
	d, ok := c.dims[dimension]
	if !ok {
		return 0
	}

	return d.updates
}

// MaxIterations returns the largest counted update number over all dimensions.
func (c *ConvergenceInfo) MaxIterations() int {
	n := 0
	for _, d := range c.dims {
		n = max(n, d.updates)
	}

	return n
}

// UpdateDimension archives the current snapshots of every registered category
// of the dimension, stores the new values and measures, and counts one update.
//
// Values for unregistered categories are ignored; registered categories
// missing from values are recorded as 0. Unknown dimensions are ignored.
func (c *ConvergenceInfo) UpdateDimension(dimension string, values map[string]float64) {
	if d, ok := c.dims[dimension]; ok {
		d.record(values, true)
	}
}

// RecordDimension is UpdateDimension without counting an update.
//
// It refreshes reported values after balancing decisions have been made.
func (c *ConvergenceInfo) RecordDimension(dimension string, values map[string]float64) {
	if d, ok := c.dims[dimension]; ok {
		d.record(values, false)
	}
}

// IsDimensionConverged reports whether the dimension has been updated at least
// once and every category's latest measure is within its criterion.
func (c *ConvergenceInfo) IsDimensionConverged(dimension string) bool {
	d, ok := c.dims[dimension]

	return ok && d.converged()
}

// MeetsDimensionStoppingCriteria reports whether the dimension is converged or
// has used up its iteration budget.
func (c *ConvergenceInfo) MeetsDimensionStoppingCriteria(dimension string) bool {
	d, ok := c.dims[dimension]

	return ok && d.stopped()
}

// IsConverged reports whether every dimension is converged.
func (c *ConvergenceInfo) IsConverged() bool {
	for _, d := range c.dims {
		if !d.converged() {
			return false
		}
	}

	return true
}

// MeetsStoppingCriteria reports whether every dimension meets its stopping criteria.
func (c *ConvergenceInfo) MeetsStoppingCriteria() bool {
	for _, d := range c.dims {
		if !d.stopped() {
			return false
		}
	}

	return true
}

// WeightedRelativeError scores the latest state: for each dimension the sum of
// |measure × value| over categories divided by the sum of targets (floored at
// ZeroTargetEpsilon), summed over dimensions. Lower is better.
func (c *ConvergenceInfo) WeightedRelativeError() float64 {
	total := 0.0
	for _, d := range c.dims {
		deviation, targets := 0.0, 0.0
		for _, cat := range d.categories {
			s := d.current[cat]
			deviation += math.Abs(s.Measure * s.Value)
			targets += s.Target
		}
		total += deviation / math.Max(targets, ZeroTargetEpsilon)
	}

	return total
}
