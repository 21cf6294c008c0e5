package source

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/geography"
	"github.com/arloliu/popbal/types"
)

// Geography is a fixed geographic level.
type Geography struct {
	level    string
	elements []int
}

var _ geography.Geography = (*Geography)(nil)

// NewGeography creates a static geography level.
//
// Parameters:
//   - level: Level name (e.g., "block_group")
//   - elements: Element ids of the level (copied)
//
// Returns:
//   - *Geography: Initialized geography
func NewGeography(level string, elements []int) *Geography {
	return &Geography{level: level, elements: slices.Clone(elements)}
}

// Level returns the level name.
func (g *Geography) Level() string {
	return g.level
}

// Elements returns a copy of the element ids.
func (g *Geography) Elements() []int {
	return slices.Clone(g.elements)
}

// Mapping is a fixed relation from target elements to base elements.
type Mapping struct {
	level string
	basis map[int][]int
}

var _ geography.Mapping = (*Mapping)(nil)

// NewMapping creates a static mapping.
//
// Parameters:
//   - level: Target level name (e.g., "tract")
//   - basis: Target element id → covered base element ids (copied)
//
// Returns:
//   - *Mapping: Initialized mapping
//
// Example:
//
//	tracts := source.NewMapping("tract", map[int][]int{
//	    1: {10, 11},
//	    2: {12},
//	})
func NewMapping(level string, basis map[int][]int) *Mapping {
	m := &Mapping{level: level, basis: make(map[int][]int, len(basis))}
	for target, elems := range basis {
		m.basis[target] = slices.Clone(elems)
	}

	return m
}

// Level returns the target level name.
func (m *Mapping) Level() string {
	return m.level
}

// Targets returns the target element ids in ascending order.
func (m *Mapping) Targets() []int {
	return slices.Sorted(maps.Keys(m.basis))
}

// Basis returns a copy of the base elements covered by target.
func (m *Mapping) Basis(target int) []int {
	return slices.Clone(m.basis[target])
}

// Targets serves target rows keyed by geography level and element.
//
// It is safe for concurrent use; Update may be called while a run reads.
type Targets[R any] struct {
	mu   sync.RWMutex
	rows map[string]map[int]R
}

// NewTargets creates a target row source.
//
// Parameters:
//   - rows: Level → element id → target row (copied one level deep)
//
// Returns:
//   - *Targets[R]: Initialized source
func NewTargets[R any](rows map[string]map[int]R) *Targets[R] {
	t := &Targets[R]{rows: make(map[string]map[int]R, len(rows))}
	for level, byElement := range rows {
		t.rows[level] = maps.Clone(byElement)
	}

	return t
}

// TargetRow returns the row of one element of a level.
//
// Returns:
//   - R: The target row
//   - error: ErrUnknownElement when no row was registered
func (t *Targets[R]) TargetRow(_ context.Context, level string, element int) (R, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[level][element]
	if !ok {
		var zero R
		return zero, fmt.Errorf("target row %s/%d: %w", level, element, types.ErrUnknownElement)
	}

	return row, nil
}

// Update registers or replaces the row of one element.
//
// This allows tests to simulate revised control totals between runs.
func (t *Targets[R]) Update(level string, element int, row R) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rows[level] == nil {
		t.rows[level] = make(map[int]R)
	}
	t.rows[level][element] = row
}

// Pools serves a fixed candidate pool per base element.
//
// The same groups are returned on every call. Callers sample from them and
// copy before mutating weights, so the pools are never modified.
type Pools[R any] struct {
	mu    sync.RWMutex
	pools map[int]*balance.Group[R]
}

// NewPools creates a pool source.
//
// Parameters:
//   - pools: Base element id → candidate elements
//
// Returns:
//   - *Pools[R]: Initialized source
func NewPools[R any](pools map[int]*balance.Group[R]) *Pools[R] {
	p := &Pools[R]{pools: make(map[int]*balance.Group[R], len(pools))}
	maps.Copy(p.pools, pools)

	return p
}

// Pools returns the candidate pool of every base element of the neighborhood.
//
// Base elements without a registered pool get an empty group.
func (p *Pools[R]) Pools(_ context.Context, nb geography.Neighborhood) (map[int]*balance.Group[R], error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[int]*balance.Group[R], len(nb.Elements))
	for _, e := range nb.Elements {
		if g, ok := p.pools[e]; ok {
			out[e] = g
		} else {
			out[e] = balance.NewGroup[R]()
		}
	}

	return out, nil
}

// Update registers or replaces the pool of one base element.
func (p *Pools[R]) Update(element int, pool *balance.Group[R]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pools[element] = pool
}

// Totals serves the integer total of each base element.
type Totals struct {
	mu     sync.RWMutex
	totals map[int]int
}

// NewTotals creates a total source.
//
// Parameters:
//   - totals: Base element id → integer total (copied)
//
// Returns:
//   - *Totals: Initialized source
func NewTotals(totals map[int]int) *Totals {
	t := &Totals{totals: make(map[int]int, len(totals))}
	maps.Copy(t.totals, totals)

	return t
}

// Total returns the integer total of a base element.
//
// Returns:
//   - int: The total
//   - error: ErrUnknownElement when no total was registered
func (t *Totals) Total(_ context.Context, element int) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.totals[element]
	if !ok {
		return 0, fmt.Errorf("total of element %d: %w", element, types.ErrUnknownElement)
	}

	return n, nil
}

// Update registers or replaces the total of one base element.
func (t *Totals) Update(element, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totals[element] = total
}
