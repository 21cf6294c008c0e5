// Package types provides the non-generic interfaces and errors shared across popbal packages.
//
// Keeping these definitions in a leaf package lets the algorithm packages
// (balance, discretize, geography) and the root popbal package depend on the
// same Logger and MetricsCollector contracts without import cycles.
//
// Key types:
//   - Logger: Structured logging interface
//   - MetricsCollector: Balancing and run metrics interface
//   - Sentinel errors: configuration, collaborator, and neighborhood failures
package types
