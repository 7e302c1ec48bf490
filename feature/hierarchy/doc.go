// Package hierarchy implements the Hierarchy Resolver.
//
// # Climb
//
// Starting from a house, the resolver follows municipal hierarchy links upward, collecting the
// address object at each step (name, type, rank). The climb stops at the first missing link or
// object; such gaps leave the corresponding levels blank and are not errors. Chains are bounded
// by MaxDepth: a longer chain, or a full-length chain that does not end at the region (rank 1),
// means a cycle or a malformed registry and fails the region.
//
// # Projection
//
// Ancestors are projected onto eight fixed levels by rank:
//
//	street=8 terr=7 place=6 city=5 muni=4 munr=3 admr=2 (reserved, always blank) region=1
//
// If two ancestors share a rank the nearest to the house wins and a warning is logged.
package hierarchy
