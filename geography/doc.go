// Package geography computes independent balancing neighborhoods.
//
// The package consumes two relations supplied by the caller: the base
// geography (the finest level at which samples are drawn) and, for each
// target geography, a mapping from target elements to the base elements
// they cover. How those relations are built is outside the package.
//
// A neighborhood is a connected component of base elements under the union of
// all mappings. Two neighborhoods never share a base element, so they can be
// balanced concurrently without coordination.
//
// Key types:
//   - Geography: Base level and its element ids
//   - Mapping: Target level to base level relation
//   - Neighborhood: One independent unit of balancing work
//   - Partition: Connected-component decomposition
package geography
