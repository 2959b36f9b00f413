//go:build cgo_sqlite

package doubletags

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func openSQLiteDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
