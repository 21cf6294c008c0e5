package types

import "errors"

// Sentinel errors for the popbal library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// Components wrap them with context using fmt.Errorf("%s: %w", msg, err).

// Construction errors - returned before any balancing starts. They are not recoverable.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch is returned when the dimension names of the targets
	// and of the convergence criteria are not the same set.
	ErrDimensionMismatch = errors.New("target and criteria dimensions do not match")

	// ErrCategoryMismatch is returned when a classifier reports a target for a
	// category it does not enumerate.
	ErrCategoryMismatch = errors.New("target category is not a classifier category")

	// ErrDuplicateDimension is returned when two classifiers share a dimension name.
	ErrDuplicateDimension = errors.New("duplicate dimension name")

	// ErrNoControls is returned when no control set or no classifier is supplied.
	ErrNoControls = errors.New("at least one control set with a classifier is required")
)

// Collaborator errors - a required external collaborator is missing.
var (
	// ErrGeographyRequired is returned when the base geography is nil.
	ErrGeographyRequired = errors.New("base geography is required")

	// ErrMappingRequired is returned when a control set has no geography mapping.
	ErrMappingRequired = errors.New("geography mapping is required")

	// ErrTargetSourceRequired is returned when the target row source is nil.
	ErrTargetSourceRequired = errors.New("target source is required")

	// ErrElementSourceRequired is returned when the balance element source is nil.
	ErrElementSourceRequired = errors.New("element source is required")

	// ErrTotalSourceRequired is returned when the integer total source is nil.
	ErrTotalSourceRequired = errors.New("total source is required")

	// ErrUnknownElement is returned by a collaborator asked about a geography
	// element it has no data for.
	ErrUnknownElement = errors.New("unknown geography element")
)

// Discretization errors - the integer target cannot be realized.
var (
	// ErrNegativeTotal is returned when an integer target is negative.
	ErrNegativeTotal = errors.New("integer total must not be negative")

	// ErrNoHandles is returned when a positive integer target is requested
	// for an empty set of weight handles.
	ErrNoHandles = errors.New("no weight handles to discretize")
)

// Run errors - recorded per neighborhood, never returned from a run.
var (
	// ErrNeighborhoodFailed wraps any error or panic raised while processing one neighborhood.
	ErrNeighborhoodFailed = errors.New("neighborhood balancing failed")
)
