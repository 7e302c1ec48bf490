// Package export writes the final flat format.
//
// # Format
//
// One record per resolved address, fields separated by '¬' (see Columns). Every text column
// has a transliterated *_en twin and each row carries the ISO 3166-2 code of its region. The id
// column is the row index inside the region file.
//
// # Files
//
// Region files are written to a temporary file and renamed into place, so readers never see a
// partial file. MergeFiles concatenates region files into the country-wide export.
package export
