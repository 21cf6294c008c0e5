// Package source provides static in-memory collaborators for a synthesis run.
//
// The package includes:
//
//   - Geography: Fixed base geography
//   - Mapping: Fixed target-to-base mapping
//   - Targets: Target rows keyed by level and element
//   - Pools: Candidate element pools per base element
//   - Totals: Integer totals per base element
//
// They suit tests, examples, and runs whose inputs fit in memory. Custom
// sources can be implemented by satisfying the popbal collaborator interfaces.
package source
