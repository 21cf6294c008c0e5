package balance

import (
	"fmt"
	"math"

	"github.com/arloliu/popbal/types"
)

type dimension struct {
	name       string
	categories []string
	targets    []float64
	// participation[i][c] is element i's participation in category c.
	participation [][]float64
}

// Balancer runs iterative proportional fitting over one group of elements.
//
// Participation is evaluated once at construction; element data is immutable
// so it cannot change afterwards.
type Balancer[R any] struct {
	association string
	elements    []*Element[R]
	handles     []*Weight
	// handleOf[i] indexes handles for element i.
	handleOf []int
	dims     []dimension
	info     *ConvergenceInfo
	ceiling  float64
	logger   types.Logger

	// scratch
	adjust []float64
}

// NewBalancer creates a balancer for one balancing unit.
//
// Parameters:
//   - association: Unit name reported by the convergence information
//   - group: Elements to balance; repeated entries count once
//   - classifiers: Control dimensions, processed in this order
//   - row: Target row the classifiers extract control totals from
//   - criteria: Dimension name → stopping criteria, exactly one per classifier
//   - opts: Optional configuration (WithWeightLimitFactor, WithBalancerLogger)
//
// Returns:
//   - *Balancer[R]: Balancer with no updates applied yet
//   - error: ErrDuplicateDimension, ErrCategoryMismatch or ErrDimensionMismatch
func NewBalancer[R any](
	association string,
	group *Group[R],
	classifiers []Classifier[R],
	row R,
	criteria map[string]Criteria,
	opts ...BalancerOption,
) (*Balancer[R], error) {
	o := newBalancerOptions(opts)

	b := &Balancer[R]{
		association: association,
		elements:    group.distinct(),
		logger:      o.logger,
	}

	handleIdx := make(map[*Weight]int)
	b.handleOf = make([]int, len(b.elements))
	for i, e := range b.elements {
		idx, ok := handleIdx[e.weight]
		if !ok {
			idx = len(b.handles)
			handleIdx[e.weight] = idx
			b.handles = append(b.handles, e.weight)
		}
		b.handleOf[i] = idx
	}
	b.adjust = make([]float64, len(b.handles))

	if len(criteria) != len(classifiers) {
		return nil, fmt.Errorf("%s: %d classifiers, %d criteria: %w",
			association, len(classifiers), len(criteria), types.ErrDimensionMismatch)
	}

	b.info = &ConvergenceInfo{association: association, dims: make(map[string]*dimensionState, len(classifiers))}
	maxTarget := 0.0

	for _, c := range classifiers {
		name := c.Name()
		if _, dup := b.info.dims[name]; dup {
			return nil, fmt.Errorf("%s: dimension %q: %w", association, name, types.ErrDuplicateDimension)
		}
		crit, ok := criteria[name]
		if !ok {
			return nil, fmt.Errorf("%s: no criteria for dimension %q: %w", association, name, types.ErrDimensionMismatch)
		}

		d, err := newDimension(c, b.elements, row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", association, err)
		}
		for _, t := range d.targets {
			maxTarget = math.Max(maxTarget, t)
		}

		targets := make(map[string]float64, len(d.categories))
		for ci, cat := range d.categories {
			targets[cat] = d.targets[ci]
		}
		b.info.add(name, crit, d.categories, targets)
		b.dims = append(b.dims, d)
	}

	if o.weightLimitFactor > 0 {
		b.ceiling = o.weightLimitFactor * maxTarget
	}

	return b, nil
}

func newDimension[R any](c Classifier[R], elements []*Element[R], row R) (dimension, error) {
	d := dimension{name: c.Name(), categories: c.Categories()}
	index := make(map[string]int, len(d.categories))
	for i, cat := range d.categories {
		index[cat] = i
	}

	d.targets = make([]float64, len(d.categories))
	for cat, t := range c.Targets(row) {
		ci, ok := index[cat]
		if !ok {
			return dimension{}, fmt.Errorf("dimension %q category %q: %w", d.name, cat, types.ErrCategoryMismatch)
		}
		d.targets[ci] = t
	}

	d.participation = make([][]float64, len(elements))
	for i, e := range elements {
		parts := make([]float64, len(d.categories))
		for cat, p := range c.Participation(e) {
			if ci, ok := index[cat]; ok {
				parts[ci] = p
			}
		}
		d.participation[i] = parts
	}

	return d, nil
}

// Association returns the unit name.
func (b *Balancer[R]) Association() string {
	return b.association
}

// ConvergenceInfo returns the balancer's convergence bookkeeping.
func (b *Balancer[R]) ConvergenceInfo() *ConvergenceInfo {
	return b.info
}

// Handles returns the distinct weight handles the balancer rescales.
func (b *Balancer[R]) Handles() []*Weight {
	return append([]*Weight(nil), b.handles...)
}

// UpdateWeights performs one sweep over all dimensions and counts one update
// per dimension in the convergence information.
//
// For each dimension in turn, every category's factor target/total is
// computed from the current weights (1 when the total is 0); each handle is
// multiplied by the product of factor^participation over the elements that
// reference it and the categories they take part in, then clipped to the
// weight ceiling. After the sweep the new totals of every dimension are published.
func (b *Balancer[R]) UpdateWeights() {
	for di := range b.dims {
		b.updateDimension(&b.dims[di])
	}

	for di := range b.dims {
		d := &b.dims[di]
		b.info.UpdateDimension(d.name, b.totalsByCategory(d))
	}

	b.logger.Debug("balancer sweep complete",
		"association", b.association,
		"iterations", b.info.MaxIterations(),
		"converged", b.info.IsConverged(),
	)
}

// Balance calls UpdateWeights until every dimension meets its stopping criteria.
func (b *Balancer[R]) Balance() {
	for !b.info.MeetsStoppingCriteria() {
		b.UpdateWeights()
	}
}

// UpdateControlsAndTargets recomputes and publishes every dimension's totals
// without changing weights or counting an update.
func (b *Balancer[R]) UpdateControlsAndTargets() {
	for di := range b.dims {
		d := &b.dims[di]
		b.info.RecordDimension(d.name, b.totalsByCategory(d))
	}
}

func (b *Balancer[R]) updateDimension(d *dimension) {
	totals := b.totals(d)
	factors := make([]float64, len(totals))
	for ci, total := range totals {
		if total > 0 {
			factors[ci] = d.targets[ci] / total
		} else {
			factors[ci] = 1
		}
	}

	for h := range b.adjust {
		b.adjust[h] = 1
	}
	for i, row := range d.participation {
		h := b.handleOf[i]
		for ci, p := range row {
			switch {
			case p == 0:
			case p == 1:
				b.adjust[h] *= factors[ci]
			default:
				b.adjust[h] *= math.Pow(factors[ci], p)
			}
		}
	}

	for h, w := range b.handles {
		v := w.value * b.adjust[h]
		if b.ceiling > 0 && v > b.ceiling {
			v = b.ceiling
		}
		w.value = v
	}
}

func (b *Balancer[R]) totals(d *dimension) []float64 {
	totals := make([]float64, len(d.categories))
	for i, row := range d.participation {
		w := b.handles[b.handleOf[i]].value
		for ci, p := range row {
			if p != 0 {
				totals[ci] += p * w
			}
		}
	}

	return totals
}

func (b *Balancer[R]) totalsByCategory(d *dimension) map[string]float64 {
	totals := b.totals(d)
	out := make(map[string]float64, len(totals))
	for ci, cat := range d.categories {
		out[cat] = totals[ci]
	}

	return out
}
