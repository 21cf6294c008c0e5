// Package balance implements entropy-maximizing iterative proportional fitting
// over weighted sample units.
//
// A Balancer repeatedly rescales the weight of every Element in a Group, one
// dimension at a time, by the ratio of target to achieved total of each
// category the element participates in, raised to the element's participation
// rate. Convergence is tracked per category in a ConvergenceInfo, which also
// decides when to stop.
//
// # Building Blocks
//
//   - Weight: shared weight cell; elements holding the same Weight move together
//   - Element / Group: weighted sample units and multisets of them
//   - Classifier: one control dimension (categories, participation, targets)
//   - ConvergenceInfo: per-category target/value/measure bookkeeping
//   - Balancer: single-unit IPF loop
//   - CompositeBalancer: several balancers sharing one stopping test
//
// # Usage
//
//	group := balance.NewGroup(elements...)
//	b, err := balance.NewBalancer("zone-7", group, classifiers, row, criteria,
//	    balance.WithWeightLimitFactor(1.0),
//	)
//	if err != nil {
//	    return err
//	}
//	b.Balance()
//	converged := b.ConvergenceInfo().IsConverged()
//
// Nothing in this package is safe for concurrent mutation. Callers give each
// goroutine a disjoint set of weight handles.
package balance
