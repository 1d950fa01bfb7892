// Package migrations compiles the SQL migration files into the binary
// so deployments never depend on loose .sql files on disk.
package migrations

import (
	"embed"

	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "." // files sit at the root of the embedded FS
}
