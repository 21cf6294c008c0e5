package popbal

import (
	"context"

	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/geography"
)

// TargetSource supplies the target rows classifiers extract control totals from.
//
// Implementations must be safe for concurrent use; every neighborhood task
// queries the same source.
type TargetSource[R any] interface {
	// TargetRow returns the row of one element of a target geography level.
	TargetRow(ctx context.Context, level string, element int) (R, error)
}

// ElementSource supplies candidate pools of balance elements.
//
// Pools is called once per balancing attempt. The synthesizer never mutates
// the returned groups: it samples from them and balances fresh copies.
type ElementSource[R any] interface {
	// Pools returns the candidate pool of every base element of nb.
	// Base elements missing from the result are treated as empty pools.
	Pools(ctx context.Context, nb geography.Neighborhood) (map[int]*balance.Group[R], error)
}

// TotalSource supplies the integer realized total of each base element.
type TotalSource interface {
	// Total returns the integer total the discretized counts of the base
	// element must sum to.
	Total(ctx context.Context, element int) (int, error)
}

// ControlSet binds classifiers to the target geography they are controlled at.
//
// Every target element of Mapping gets one balancer over the union of the
// samples of its basis elements, with targets read from the element's row.
type ControlSet[R any] struct {
	// Mapping relates the target geography to the base geography.
	Mapping geography.Mapping

	// Classifiers are the dimensions controlled at this level.
	Classifiers []balance.Classifier[R]
}

// Inputs bundles the collaborators of a run.
type Inputs[R any] struct {
	// Base is the geography samples are drawn and discretized at.
	Base geography.Geography

	// Controls lists the control sets; dimension names must be unique across all of them.
	Controls []ControlSet[R]

	// Targets serves target rows per control level and element.
	Targets TargetSource[R]

	// Elements serves candidate pools per base element.
	Elements ElementSource[R]

	// Totals serves integer totals per base element.
	Totals TotalSource

	// Filters are sampling preferences; see balance.BuildRepresentativeSample.
	Filters []balance.Filter[R]

	// Hooks are optional callbacks; nil disables them.
	Hooks *Hooks[R]
}
