// Package database handles connections to the Entity Store database and schema inspection.
//
// It wraps GORM to configure either MySQL (production) or SQLite (local runs and tests)
// from the application's configuration.
//
// # Connect
//
// Connect selects the dialector from Config.Driver, applies connection pool settings and
// verifies the connection with a bounded ping.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the registry SQL source verify that the tables it
// reads carry the expected columns before a region is loaded, so that a half-migrated
// database is reported as an unavailable source instead of producing empty regions.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "gar_houses", []string{"object_id", "object_guid"})
package database
