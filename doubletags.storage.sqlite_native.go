//go:build !cgo_sqlite

package doubletags

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

func openSQLiteDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
