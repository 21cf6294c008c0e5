package popbal

import "github.com/arloliu/popbal/types"

// Sentinel errors returned by the Synthesizer and its collaborators.
//
// They are re-exported from the types package so callers can match them with
// errors.Is without importing types.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrDimensionMismatch is returned when target and criteria dimensions differ.
	ErrDimensionMismatch = types.ErrDimensionMismatch

	// ErrCategoryMismatch is returned when a classifier targets an unknown category.
	ErrCategoryMismatch = types.ErrCategoryMismatch

	// ErrDuplicateDimension is returned when two classifiers share a name.
	ErrDuplicateDimension = types.ErrDuplicateDimension

	// ErrNoControls is returned when no control set or classifier is supplied.
	ErrNoControls = types.ErrNoControls

	// ErrGeographyRequired is returned when the base geography is nil.
	ErrGeographyRequired = types.ErrGeographyRequired

	// ErrMappingRequired is returned when a control set has no mapping.
	ErrMappingRequired = types.ErrMappingRequired

	// ErrTargetSourceRequired is returned when the target source is nil.
	ErrTargetSourceRequired = types.ErrTargetSourceRequired

	// ErrElementSourceRequired is returned when the element source is nil.
	ErrElementSourceRequired = types.ErrElementSourceRequired

	// ErrTotalSourceRequired is returned when the total source is nil.
	ErrTotalSourceRequired = types.ErrTotalSourceRequired

	// ErrUnknownElement is returned by collaborators without data for an element.
	ErrUnknownElement = types.ErrUnknownElement

	// ErrNeighborhoodFailed wraps errors and panics recorded on a NeighborhoodResult.
	ErrNeighborhoodFailed = types.ErrNeighborhoodFailed
)
