// Package migrations holds the versioned schemas applied with goose.
//
// Local store versions only ever create missing collections; nothing is
// dropped or rewritten when the version increases.
package migrations

import "embed"

//go:embed local/sqlite/*.sql local/postgres/*.sql responses/sqlite/*.sql
var FS embed.FS

const (
	LocalSQLite        = "local/sqlite"
	LocalPostgres      = "local/postgres"
	ResponsesSQLite    = "responses/sqlite"
	LocalLatestVersion = 3
)
