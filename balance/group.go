package balance

// Filter reports whether an element should be kept.
type Filter[R any] func(*Element[R]) bool

// Group is an ordered multiset of elements, the unit of input to a Balancer.
//
// The same element may appear in several groups, or several times in one group.
type Group[R any] struct {
	elements []*Element[R]
}

// NewGroup creates a group holding elements in the given order.
func NewGroup[R any](elements ...*Element[R]) *Group[R] {
	return &Group[R]{elements: append([]*Element[R](nil), elements...)}
}

// Elements returns the group's elements.
//
// The returned slice is a copy; the elements themselves are shared.
func (g *Group[R]) Elements() []*Element[R] {
	return append([]*Element[R](nil), g.elements...)
}

// Len returns the number of entries, counting repeats.
func (g *Group[R]) Len() int {
	return len(g.elements)
}

// Filter returns a new group with the elements satisfying keep.
// The receiver is not modified.
func (g *Group[R]) Filter(keep Filter[R]) *Group[R] {
	out := make([]*Element[R], 0, len(g.elements))
	for _, e := range g.elements {
		if keep(e) {
			out = append(out, e)
		}
	}

	return &Group[R]{elements: out}
}

// Join returns the multiset union of the receiver and others. Repeats are kept.
func (g *Group[R]) Join(others ...*Group[R]) *Group[R] {
	n := len(g.elements)
	for _, o := range others {
		if o != nil {
			n += len(o.elements)
		}
	}

	out := make([]*Element[R], 0, n)
	out = append(out, g.elements...)
	for _, o := range others {
		if o != nil {
			out = append(out, o.elements...)
		}
	}

	return &Group[R]{elements: out}
}

// FreshCopy returns a group of fresh element copies with new weight storage.
//
// Handle sharing inside the group is preserved: elements that shared one
// handle in the receiver share one new handle in the copy, and an element
// repeated in the receiver is repeated as the same copy. Nothing in the copy
// aliases the receiver's mutable state.
func (g *Group[R]) FreshCopy() *Group[R] {
	handles := make(map[*Weight]*Weight, len(g.elements))
	copies := make(map[*Element[R]]*Element[R], len(g.elements))
	out := make([]*Element[R], 0, len(g.elements))

	for _, e := range g.elements {
		if c, ok := copies[e]; ok {
			out = append(out, c)

			continue
		}

		h, ok := handles[e.weight]
		if !ok {
			h = NewWeight(e.weight.initial)
			handles[e.weight] = h
		}

		c := NewSharedElement(e.id, h, e.data)
		copies[e] = c
		out = append(out, c)
	}

	return &Group[R]{elements: out}
}

// Handles returns the distinct weight handles of the group in first-seen order.
func (g *Group[R]) Handles() []*Weight {
	seen := make(map[*Weight]struct{}, len(g.elements))
	out := make([]*Weight, 0, len(g.elements))
	for _, e := range g.elements {
		if _, ok := seen[e.weight]; ok {
			continue
		}
		seen[e.weight] = struct{}{}
		out = append(out, e.weight)
	}

	return out
}

// Reset restores every distinct handle of the group to its initial weight.
func (g *Group[R]) Reset() {
	for _, h := range g.Handles() {
		h.Reset()
	}
}

// TotalWeight returns the sum of the distinct handles' current weights.
func (g *Group[R]) TotalWeight() float64 {
	total := 0.0
	for _, h := range g.Handles() {
		total += h.value
	}

	return total
}

// distinct returns the elements of g without repeats, in first-seen order.
func (g *Group[R]) distinct() []*Element[R] {
	seen := make(map[*Element[R]]struct{}, len(g.elements))
	out := make([]*Element[R], 0, len(g.elements))
	for _, e := range g.elements {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	return out
}
