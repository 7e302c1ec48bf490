// Package houselist implements the Postal History Normalizer.
//
// Every house gets exactly one current postal record (end-marker 0), synthesized empty when the
// registry has none, and the history is joined onto the houses to form the base row set: one row
// per (house, postal record) with a Current discriminator.
package houselist
