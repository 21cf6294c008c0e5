package geography

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testGeography struct {
	level    string
	elements []int
}

func (g testGeography) Level() string   { return g.level }
func (g testGeography) Elements() []int { return g.elements }

type testMapping struct {
	level string
	basis map[int][]int
	order []int
}

func newTestMapping(level string, pairs ...[]int) testMapping {
	m := testMapping{level: level, basis: make(map[int][]int)}
	for _, p := range pairs {
		m.basis[p[0]] = p[1:]
		m.order = append(m.order, p[0])
	}

	return m
}

func (m testMapping) Level() string          { return m.level }
func (m testMapping) Targets() []int         { return m.order }
func (m testMapping) Basis(target int) []int { return m.basis[target] }

func TestPartition(t *testing.T) {
	t.Run("disjoint targets give separate neighborhoods", func(t *testing.T) {
		base := testGeography{level: "block", elements: []int{12, 10, 11, 13}}
		tracts := newTestMapping("tract", []int{1, 10, 11}, []int{2, 12, 13})

		nbs := Partition(base, tracts)

		require.Equal(t, []Neighborhood{
			{ID: 0, Elements: []int{10, 11}},
			{ID: 1, Elements: []int{12, 13}},
		}, nbs)
	})

	t.Run("overlapping mappings merge transitively", func(t *testing.T) {
		base := testGeography{level: "block", elements: []int{1, 2, 3, 4, 5}}
		tracts := newTestMapping("tract", []int{100, 1, 2}, []int{101, 3, 4})
		districts := newTestMapping("district", []int{200, 2, 3})

		nbs := Partition(base, tracts, districts)

		require.Len(t, nbs, 2)
		require.Equal(t, []int{1, 2, 3, 4}, nbs[0].Elements)
		require.Equal(t, []int{5}, nbs[1].Elements)
	})

	t.Run("untouched elements are singletons", func(t *testing.T) {
		base := testGeography{level: "block", elements: []int{3, 1, 2}}

		nbs := Partition(base)

		require.Equal(t, []Neighborhood{
			{ID: 0, Elements: []int{1}},
			{ID: 1, Elements: []int{2}},
			{ID: 2, Elements: []int{3}},
		}, nbs)
	})

	t.Run("unknown basis ids and duplicates are ignored", func(t *testing.T) {
		base := testGeography{level: "block", elements: []int{1, 2, 2}}
		tracts := newTestMapping("tract", []int{9, 1, 99}, []int{8, 99, 2})

		nbs := Partition(base, tracts, nil)

		require.Equal(t, []Neighborhood{
			{ID: 0, Elements: []int{1}},
			{ID: 1, Elements: []int{2}},
		}, nbs)
	})

	t.Run("neighborhoods never share elements", func(t *testing.T) {
		base := testGeography{level: "block"}
		for i := range 50 {
			base.elements = append(base.elements, i)
		}
		m := newTestMapping("tract", []int{0, 0, 7, 14}, []int{1, 14, 21}, []int{2, 30, 31}, []int{3, 49, 0})

		seen := map[int]int{}
		for _, nb := range Partition(base, m) {
			for _, e := range nb.Elements {
				_, dup := seen[e]
				require.False(t, dup, "element %d in two neighborhoods", e)
				seen[e] = nb.ID
			}
		}
		require.Len(t, seen, 50)
		require.Equal(t, seen[0], seen[21])
		require.Equal(t, seen[0], seen[49])
		require.Equal(t, seen[30], seen[31])
		require.NotEqual(t, seen[0], seen[30])
	})
}

func TestNeighborhood_TargetsWithin(t *testing.T) {
	base := testGeography{level: "block", elements: []int{10, 11, 12}}
	tracts := newTestMapping("tract", []int{2, 12}, []int{1, 10, 11, 77})

	nbs := Partition(base, tracts)
	require.Len(t, nbs, 2)

	require.Equal(t, []int{1}, nbs[0].TargetsWithin(tracts))
	require.Equal(t, []int{2}, nbs[1].TargetsWithin(tracts))
	require.Equal(t, []int{10, 11}, nbs[0].BasisWithin(tracts, 1))
	require.True(t, nbs[0].Contains(11))
	require.False(t, nbs[0].Contains(12))
}

func TestTargetIndex_Within(t *testing.T) {
	base := testGeography{level: "block", elements: []int{10, 11, 12, 13, 14}}
	tracts := newTestMapping("tract",
		[]int{5, 13, 14},
		[]int{2, 12},
		[]int{1, 10, 11, 77},
		[]int{9, 99},
	)
	counties := newTestMapping("county", []int{7, 12, 13})

	nbs := Partition(base, tracts, counties)
	require.Len(t, nbs, 2)

	t.Run("matches TargetsWithin", func(t *testing.T) {
		for _, m := range []Mapping{tracts, counties} {
			x := NewTargetIndex(m)
			require.Equal(t, m, x.Mapping())
			for _, nb := range nbs {
				require.Equal(t, nb.TargetsWithin(m), x.Within(nb), "%s in neighborhood %d", m.Level(), nb.ID)
			}
		}
	})

	t.Run("keeps mapping order", func(t *testing.T) {
		x := NewTargetIndex(tracts)
		require.Equal(t, []int{5, 2}, x.Within(nbs[1]))
		require.Equal(t, []int{1}, x.Within(nbs[0]))
	})

	t.Run("targets outside the base geography are skipped", func(t *testing.T) {
		x := NewTargetIndex(tracts)
		require.Empty(t, x.Within(Neighborhood{ID: 9, Elements: []int{98}}))
	})
}
