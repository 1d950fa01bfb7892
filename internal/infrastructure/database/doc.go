// Package database provides the SQLite persistence layer.
//
// The engine keeps two durable datasets here: baseline device snapshots
// and scan session history. Both are small, write-light tables, which
// is exactly the workload SQLite handles well on the single-board
// machines this service targets.
//
// The connection runs in WAL mode with a busy timeout and a single
// pooled connection, matching SQLite's one-writer model. All queries
// use parameterised statements, and the database file is created with
// owner-only permissions.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive-only so a rollback never loses data: new
// columns are NULLABLE or carry defaults, columns are never dropped or
// renamed, and each migration ships as an .up.sql / .down.sql pair.
package database
