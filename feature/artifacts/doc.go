// Package artifacts publishes pipeline outputs to object storage and serves them back.
//
// # Layout
//
//   - regions/<code>.csv: one flat file per region
//   - exports/<name>.csv: merged country-wide exports
//   - changelogs/<name>.csv: change logs between two exports
//
// # HTTP Endpoints
//
//   - GET /artifacts?prefix=regions/ : list stored artifacts
//   - GET /artifacts/object/* : download one artifact (e.g. /artifacts/object/regions/77.csv)
package artifacts
