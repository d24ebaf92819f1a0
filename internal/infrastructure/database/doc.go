// Package database provides the SQLite connection used for mixin storage.
//
// It opens the database in WAL mode with a single writer, applies embedded
// migrations, and exposes a health check. All queries use parameterised
// statements and the database file is created with mode 0600.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive: new columns must be nullable or have a default,
// and every .up.sql has a matching .down.sql.
package database
