package popbal

import (
	"github.com/arloliu/popbal/balance"
	"github.com/arloliu/popbal/geography"
	"github.com/arloliu/popbal/types"
)

// Re-export types from the subpackages.
//
// The algorithm packages depend only on types, never on the root package;
// these aliases give users a single import for the common vocabulary.
type (
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Criteria         = balance.Criteria
	ConvergenceInfo  = balance.ConvergenceInfo
	Weight           = balance.Weight
	Neighborhood     = geography.Neighborhood
	Geography        = geography.Geography
	Mapping          = geography.Mapping
)

// Generic re-exports.
type (
	Element[R any]    = balance.Element[R]
	Group[R any]      = balance.Group[R]
	Classifier[R any] = balance.Classifier[R]
	Filter[R any]     = balance.Filter[R]
)

// Neighborhood task outcomes reported to MetricsCollector.RecordNeighborhoodDuration.
const (
	OutcomeConverged  = types.OutcomeConverged
	OutcomeBestEffort = types.OutcomeBestEffort
	OutcomeFailed     = types.OutcomeFailed
)
