package balance

// Element is a weighted sample unit taking part in balancing.
//
// R is the caller's attribute row type; the engine never looks inside it and
// only passes it to classifiers. The id and data are immutable; the weight
// lives in a shared *Weight handle.
type Element[R any] struct {
	id     int
	weight *Weight
	data   map[string]R
}

// NewElement creates an element that owns a fresh weight handle.
//
// Parameters:
//   - id: Element identifier (unique within the seed source)
//   - initialWeight: Starting weight, restored by Reset
//   - data: Attribute rows keyed by name (not copied; must not be mutated afterwards)
//
// Returns:
//   - *Element[R]: New element
func NewElement[R any](id int, initialWeight float64, data map[string]R) *Element[R] {
	return &Element[R]{id: id, weight: NewWeight(initialWeight), data: data}
}

// NewSharedElement creates an element bound to an existing weight handle.
//
// Elements sharing a handle are rescaled and discretized as one unit; for
// example the persons of one household all hold the household's handle.
//
// Parameters:
//   - id: Element identifier
//   - handle: Weight handle to share (its initial value is the element's initial weight)
//   - data: Attribute rows keyed by name
//
// Returns:
//   - *Element[R]: New element referencing handle
func NewSharedElement[R any](id int, handle *Weight, data map[string]R) *Element[R] {
	return &Element[R]{id: id, weight: handle, data: data}
}

// ID returns the element identifier.
func (e *Element[R]) ID() int {
	return e.id
}

// Weight returns the current continuous weight.
func (e *Element[R]) Weight() float64 {
	return e.weight.value
}

// InitialWeight returns the weight restored by Reset.
func (e *Element[R]) InitialWeight() float64 {
	return e.weight.initial
}

// Handle returns the element's weight handle.
func (e *Element[R]) Handle() *Weight {
	return e.weight
}

// Data returns the element's attribute rows.
func (e *Element[R]) Data() map[string]R {
	return e.data
}

// Reset restores the weight to its initial value in place.
//
// Use Reset before retrying a balancing attempt against the same elements.
func (e *Element[R]) Reset() {
	e.weight.Reset()
}

// FreshCopy returns a new element sharing this element's id and data but
// holding an independent weight handle initialized to the initial weight.
func (e *Element[R]) FreshCopy() *Element[R] {
	return &Element[R]{id: e.id, weight: NewWeight(e.weight.initial), data: e.data}
}
