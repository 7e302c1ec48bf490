// Package config loads the gar-builder configuration.
//
// Values come from environment variables, optionally preloaded from a .env file. Viper maps
// nested keys to upper-case variables with underscores (changelog.chunk_size is CHANGELOG_CHUNK_SIZE).
// Defaults are declared next to each field with a `default:"..."` struct tag.
//
// # Configuration Structure
//
//   - Log: level and format
//   - Database: SQL Entity Store (mysql or sqlite)
//   - Storage: S3/MinIO credentials and artifact bucket
//   - Server: HTTP port and API key of the serve command
//   - Region: source selection, archive path, output directory, allowed house types
//   - Changelog: chunk size, workers, work dir, content separator
//   - Metrics: Pushgateway URL and job
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Changelog.ChunkSize)
package config
