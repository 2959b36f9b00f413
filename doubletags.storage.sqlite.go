package doubletags

// sqliteDialect binds positional parameters as ?. The database/sql driver
// behind it is chosen at build time: pure Go by default, cgo with the
// cgo_sqlite build tag.
var sqliteDialect = sqlDialect{
	name: StoreDriverSQLite,
	open: openSQLiteDB,
}

// SQLitePartialStoreDriver is the driver for creating SQLite partial stores.
type SQLitePartialStoreDriver struct{}

func init() {
	RegisterPartialStoreDriver(StoreDriverSQLite, &SQLitePartialStoreDriver{})
}

// Open creates a SQLite store and migrates its schema.
// The connection string is the database file path.
func (d *SQLitePartialStoreDriver) Open(connectionString string) (PartialStore, error) {
	return NewSQLitePartialStore(SQLConfig{
		ConnectionString: connectionString,
		AutoMigrate:      true,
	})
}

// NewSQLitePartialStore creates a SQLite partial store. Unset fields take
// DefaultSQLConfig values, except MaxOpenConns which defaults to 1 since
// SQLite allows a single writer.
func NewSQLitePartialStore(config SQLConfig) (*SQLPartialStore, error) {
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = SQLiteMaxOpenConns
	}
	return newSQLPartialStore(sqliteDialect, config)
}
