package balance

// CompositeBalancer drives several balancers under one shared stopping test.
//
// Typical children are the per-geography-element balancers of one
// neighborhood; they may share weight handles. The merged convergence
// information reports every child dimension as "<child>/<dimension>".
type CompositeBalancer[R any] struct {
	children []*Balancer[R]
	info     *ConvergenceInfo
}

// NewCompositeBalancer wraps children under the given association name.
func NewCompositeBalancer[R any](association string, children ...*Balancer[R]) *CompositeBalancer[R] {
	infos := make([]*ConvergenceInfo, len(children))
	for i, c := range children {
		infos[i] = c.info
	}

	return &CompositeBalancer[R]{
		children: append([]*Balancer[R](nil), children...),
		info:     MergeConvergenceInfo(association, infos...),
	}
}

// Children returns the wrapped balancers.
func (c *CompositeBalancer[R]) Children() []*Balancer[R] {
	return append([]*Balancer[R](nil), c.children...)
}

// ConvergenceInfo returns the merged live view over the children's bookkeeping.
func (c *CompositeBalancer[R]) ConvergenceInfo() *ConvergenceInfo {
	return c.info
}

// UpdateWeights sweeps every child that has not yet met its own stopping criteria.
func (c *CompositeBalancer[R]) UpdateWeights() {
	for _, child := range c.children {
		if !child.info.MeetsStoppingCriteria() {
			child.UpdateWeights()
		}
	}
}

// Balance runs sweeps until the merged view meets its stopping criteria.
//
// A child that has stopped contributes no further weight changes, but its
// convergence still takes part in the shared test. Because children may
// share handles, the stopping test is confirmed against freshly recomputed
// totals; a child knocked out of convergence by its siblings resumes while it
// has iterations left.
func (c *CompositeBalancer[R]) Balance() {
	for {
		if c.info.MeetsStoppingCriteria() {
			c.UpdateControlsAndTargets()
			if c.info.MeetsStoppingCriteria() {
				return
			}
		}
		c.UpdateWeights()
	}
}

// UpdateControlsAndTargets refreshes every child's published totals without changing weights.
func (c *CompositeBalancer[R]) UpdateControlsAndTargets() {
	for _, child := range c.children {
		child.UpdateControlsAndTargets()
	}
}
