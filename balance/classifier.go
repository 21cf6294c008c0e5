package balance

// Classifier describes one control dimension.
//
// A classifier enumerates a fixed set of categories, says how much each
// element participates in each category (commonly 0 or 1), and extracts the
// per-category targets from an externally supplied target row.
//
// Implementations must be safe for concurrent use: the same classifier is
// consulted by every neighborhood task of a run.
type Classifier[R any] interface {
	// Name returns the dimension name, unique within a run.
	Name() string

	// Categories returns the dimension's categories in a stable order.
	Categories() []string

	// Participation returns the element's participation amount per category.
	// Categories absent from the map participate with 0.
	Participation(e *Element[R]) map[string]float64

	// Targets returns the control total per category for the given target row.
	// Categories absent from the map have a target of 0.
	Targets(row R) map[string]float64
}

// FuncClassifier is a Classifier assembled from plain functions.
type FuncClassifier[R any] struct {
	name          string
	categories    []string
	participation func(*Element[R]) map[string]float64
	targets       func(R) map[string]float64
}

var _ Classifier[int] = (*FuncClassifier[int])(nil)

// NewClassifier builds a classifier from a name, a category list and two functions.
//
// Parameters:
//   - name: Dimension name
//   - categories: Category names in reporting order
//   - participation: Element to per-category participation
//   - targets: Target row to per-category control totals
//
// Returns:
//   - *FuncClassifier[R]: Classifier delegating to the functions
//
// Example:
//
//	size := balance.NewClassifier("household_size", []string{"1", "2", "3+"},
//	    func(e *balance.Element[Row]) map[string]float64 {
//	        return map[string]float64{sizeBucket(e.Data()["household"]): 1}
//	    },
//	    func(row Row) map[string]float64 {
//	        return map[string]float64{"1": row["hh1"], "2": row["hh2"], "3+": row["hh3p"]}
//	    },
//	)
func NewClassifier[R any](
	name string,
	categories []string,
	participation func(*Element[R]) map[string]float64,
	targets func(R) map[string]float64,
) *FuncClassifier[R] {
	return &FuncClassifier[R]{
		name:          name,
		categories:    append([]string(nil), categories...),
		participation: participation,
		targets:       targets,
	}
}

// Name returns the dimension name.
func (c *FuncClassifier[R]) Name() string {
	return c.name
}

// Categories returns a copy of the category list.
func (c *FuncClassifier[R]) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Participation delegates to the participation function.
func (c *FuncClassifier[R]) Participation(e *Element[R]) map[string]float64 {
	return c.participation(e)
}

// Targets delegates to the target function.
func (c *FuncClassifier[R]) Targets(row R) map[string]float64 {
	return c.targets(row)
}
