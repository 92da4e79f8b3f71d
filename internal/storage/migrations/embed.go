package migrations

import "embed"

// FS contains the embedded schema migrations, one directory per SQL driver.
//
//go:embed postgres/*.sql sqlite3/*.sql
var FS embed.FS
