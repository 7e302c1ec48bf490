// Package changelog computes a row-level change log between two versions of the flat export.
//
// Neither version is ever loaded whole. The engine works in four phases over a run-specific
// working directory:
//
//  1. Disassemble: each input is read in chunks of Config.ChunkSize rows. Every row is reduced to
//     its identity key (guid, current, postalcode) and a content string (the remaining address
//     fields joined by Config.ContentSeparator) and appended to a part file selected by the first
//     hex digit of its GUID.
//  2. Assemble: the part files of each (version, prefix) pair are concatenated into one shard.
//  3. Compare: each prefix is an independent full outer join of the old and new shard on the
//     identity key. Rows are classified as "new address", "deleted", "address names changed" or
//     "no change"; the last is dropped.
//  4. Merge: the sixteen partial logs are concatenated in prefix order into the output file.
//
// Because the shard is a function of the GUID alone, rows sharing an identity key always meet in
// the same comparison, whatever the chunk size. Phases B and C run on up to Config.Workers
// goroutines.
//
// # Working files
//
// Part files, shards and partial logs are CSV inside a snappy stream and are removed when the
// run ends, successfully or not. The output is written to a temporary file and renamed, so a
// failed run never leaves a partial change log.
//
// # Errors
//
// An unreadable input is faults.ErrSourceUnavailable. A GUID without a hex first digit, a missing
// column or an identity key repeated within one version is a structural violation. Any error
// aborts the whole run.
package changelog
