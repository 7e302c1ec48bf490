// Package faults defines the error taxonomy shared by the region pipeline and the
// change log engine.
//
// # Categories
//
//   - StructuralViolation: a registry invariant does not hold (duplicate ids, more than one
//     current postal record, a hierarchy that does not terminate at the region root).
//     Fatal for the region or diff run that hit it. Never repaired silently.
//   - SourceUnavailable: an archive, table or shard file cannot be opened or read.
//     Fatal and surfaced to the caller.
//
// A missing ancestor is not an error: the affected level columns simply stay empty.
//
// # Usage
//
//	if len(dupes) > 0 {
//	    return faults.Structural("unique_object_id", "duplicate ids: %v", dupes)
//	}
//
//	if errors.Is(err, faults.ErrStructuralViolation) { ... }
package faults
