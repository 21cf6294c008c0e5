package geography

import "slices"

// unionFind is a disjoint-set forest over dense indices with path halving
// and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range n {
		uf.parent[i] = i
		uf.size[i] = 1
	}

	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}

	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

// Partition splits the base geography into neighborhoods.
//
// Two base elements are in the same neighborhood when they are transitively
// connected through the basis of any target element of any mapping. A base
// element no mapping touches forms a neighborhood of its own. Basis ids that
// are not elements of base are ignored.
//
// The result is deterministic: neighborhoods are ordered by their smallest
// base element and numbered from 0 in that order.
//
// Parameters:
//   - base: Base geography
//   - mappings: Target-to-base mappings of every active control set
//
// Returns:
//   - []Neighborhood: Disjoint neighborhoods covering every base element
//
// Example:
//
//	// tract 1 covers blocks 10 and 11, tract 2 covers block 12
//	nbs := geography.Partition(blocks, tracts)
//	// nbs[0].Elements == []int{10, 11}, nbs[1].Elements == []int{12}
func Partition(base Geography, mappings ...Mapping) []Neighborhood {
	elements := slices.Clone(base.Elements())
	slices.Sort(elements)
	elements = slices.Compact(elements)

	index := make(map[int]int, len(elements))
	for i, e := range elements {
		index[e] = i
	}

	uf := newUnionFind(len(elements))
	for _, m := range mappings {
		if m == nil {
			continue
		}
		for _, target := range m.Targets() {
			first := -1
			for _, b := range m.Basis(target) {
				i, ok := index[b]
				if !ok {
					continue
				}
				if first < 0 {
					first = i
				} else {
					uf.union(first, i)
				}
			}
		}
	}

	// elements is sorted, so the first member seen for each root is the
	// component's smallest element and components appear in that order.
	componentOf := make(map[int]int)
	var out []Neighborhood
	for i, e := range elements {
		root := uf.find(i)
		id, ok := componentOf[root]
		if !ok {
			id = len(out)
			componentOf[root] = id
			out = append(out, Neighborhood{ID: id})
		}
		out[id].Elements = append(out[id].Elements, e)
	}

	return out
}
