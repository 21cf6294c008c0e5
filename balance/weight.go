package balance

// Weight is a shared, mutable weight cell.
//
// Several elements may hold the same *Weight to force them to move together:
// the same handle always stands for the same physical choice. A Weight
// carries both the continuous expansion weight used while balancing and the
// integer count produced by discretization.
type Weight struct {
	value       float64
	initial     float64
	count       int
	discretized bool
}

// NewWeight creates a weight handle whose current and initial value is initial.
func NewWeight(initial float64) *Weight {
	return &Weight{value: initial, initial: initial}
}

// Value returns the current continuous weight.
func (w *Weight) Value() float64 {
	return w.value
}

// Initial returns the weight the handle was created with.
func (w *Weight) Initial() float64 {
	return w.initial
}

// Set replaces the current continuous weight.
func (w *Weight) Set(v float64) {
	w.value = v
}

// Scale multiplies the current continuous weight by f.
func (w *Weight) Scale(f float64) {
	w.value *= f
}

// Reset restores the initial weight and clears any discretized count.
func (w *Weight) Reset() {
	w.value = w.initial
	w.count = 0
	w.discretized = false
}

// Count returns the integer realized count set by discretization.
//
// The count is zero until SetCount is called.
func (w *Weight) Count() int {
	return w.count
}

// SetCount records the integer realized count for this handle.
func (w *Weight) SetCount(n int) {
	w.count = n
	w.discretized = true
}

// Discretized reports whether SetCount has been called since the last Reset.
func (w *Weight) Discretized() bool {
	return w.discretized
}
