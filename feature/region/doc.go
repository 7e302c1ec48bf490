// Package region orchestrates the per-region pipeline.
//
// For each region the Processor loads the raw record sets from a registry.Source, filters them,
// normalizes the postal history, resolves the hierarchy and hands the rows to a Sink (usually
// export.DirSink). Regions are isolated: a structural violation or unreadable input fails that
// region only, and ProcessAll moves on to the next one.
package region
