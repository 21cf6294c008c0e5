package geography

import "slices"

// Geography is a geographic level with a finite set of element ids.
type Geography interface {
	// Level returns the level name (e.g., "block_group").
	Level() string

	// Elements returns the element ids of the level.
	Elements() []int
}

// Mapping relates a target geography to the base geography.
//
// Implementations must be safe for concurrent reads.
type Mapping interface {
	// Level returns the target level name (e.g., "tract").
	Level() string

	// Targets returns the target element ids.
	Targets() []int

	// Basis returns the base element ids covered by a target element.
	Basis(target int) []int
}

// Neighborhood is a maximal set of base elements connected through mappings.
type Neighborhood struct {
	// ID is the neighborhood's position in the partition, starting at 0.
	ID int `json:"id"`

	// Elements lists the base element ids in ascending order.
	Elements []int `json:"elements"`
}

// Contains reports whether the base element belongs to the neighborhood.
func (n Neighborhood) Contains(element int) bool {
	_, ok := slices.BinarySearch(n.Elements, element)

	return ok
}

// TargetsWithin returns the target elements of m whose basis lies in the neighborhood.
//
// Base elements outside the base geography are ignored, so a target element
// is returned when at least one of its base elements belongs to n. When n
// came from Partition with m among the mappings, such a target has its whole
// basis inside n.
//
// Returns:
//   - []int: Target element ids in the order reported by m.Targets()
func (n Neighborhood) TargetsWithin(m Mapping) []int {
	var out []int
	for _, target := range m.Targets() {
		for _, b := range m.Basis(target) {
			if n.Contains(b) {
				out = append(out, target)

				break
			}
		}
	}

	return out
}

// BasisWithin returns the base elements of one target element that belong to n.
func (n Neighborhood) BasisWithin(m Mapping, target int) []int {
	var out []int
	for _, b := range m.Basis(target) {
		if n.Contains(b) {
			out = append(out, b)
		}
	}

	return out
}

// TargetIndex answers TargetsWithin for one mapping without scanning every
// target element. Build it once and share it; it is read-only after
// NewTargetIndex returns.
type TargetIndex struct {
	mapping Mapping
	// rank is the position of each target in m.Targets().
	rank map[int]int
	// byBase lists the targets whose basis contains a base element.
	byBase map[int][]int
}

// NewTargetIndex indexes the targets of m by base element.
func NewTargetIndex(m Mapping) *TargetIndex {
	targets := m.Targets()
	x := &TargetIndex{
		mapping: m,
		rank:    make(map[int]int, len(targets)),
		byBase:  make(map[int][]int),
	}
	for i, target := range targets {
		if _, dup := x.rank[target]; dup {
			continue
		}
		x.rank[target] = i
		for _, b := range m.Basis(target) {
			if list := x.byBase[b]; len(list) == 0 || list[len(list)-1] != target {
				x.byBase[b] = append(list, target)
			}
		}
	}

	return x
}

// Mapping returns the indexed mapping.
func (x *TargetIndex) Mapping() Mapping {
	return x.mapping
}

// Within returns the same target elements as n.TargetsWithin(x.Mapping()),
// in the same order, in time proportional to the size of n.
func (x *TargetIndex) Within(n Neighborhood) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, b := range n.Elements {
		for _, target := range x.byBase[b] {
			if _, ok := seen[target]; ok {
				continue
			}
			seen[target] = struct{}{}
			out = append(out, target)
		}
	}
	slices.SortFunc(out, func(a, b int) int {
		return x.rank[a] - x.rank[b]
	})

	return out
}
