package doubletags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// SQLConfig configures the SQL-backed partial stores (postgres and sqlite).
type SQLConfig struct {
	// ConnectionString is the driver DSN. For sqlite it is the database file path.
	ConnectionString string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 25 (postgres), 1 (sqlite)
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration

	// Table is the partials table name. Letters, digits and underscores only.
	// Default: "doubletags_partials"
	Table string

	// AutoMigrate creates the table on Open.
	// Default: false
	AutoMigrate bool

	// QueryTimeout is the default timeout for queries.
	// Default: 30 seconds
	QueryTimeout time.Duration
}

// DefaultSQLConfig returns a configuration with sensible defaults.
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		MaxOpenConns:    SQLDefaultMaxOpenConns,
		MaxIdleConns:    SQLDefaultMaxIdleConns,
		ConnMaxLifetime: SQLDefaultConnMaxLifetime,
		Table:           SQLDefaultTable,
		QueryTimeout:    SQLDefaultQueryTimeout,
	}
}

// sqlDialect holds what differs between SQL backends.
type sqlDialect struct {
	name        string
	bindNumbers bool // $1, $2 instead of ?
	open        func(dsn string) (*sql.DB, error)
}

func (d sqlDialect) bind(n int) string {
	if d.bindNumbers {
		return "$" + strconv.Itoa(n)
	}
	return SQLPlaceholderQuestion
}

// SQLPartialStore implements PartialStore on database/sql.
// It backs both the postgres and the sqlite drivers.
type SQLPartialStore struct {
	db      *sql.DB
	config  SQLConfig
	dialect sqlDialect
	mu      sync.RWMutex
	closed  bool
}

// sqlMigration represents a schema migration.
type sqlMigration struct {
	Version     int
	Description string
	SQL         string
}

func newSQLPartialStore(dialect sqlDialect, config SQLConfig) (*SQLPartialStore, error) {
	if config.ConnectionString == "" {
		return nil, NewStoreConfigError(ErrMsgEmptyConnString)
	}

	// Apply defaults for zero values
	defaults := DefaultSQLConfig()
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = defaults.MaxOpenConns
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = defaults.MaxIdleConns
	}
	if config.ConnMaxLifetime == 0 {
		config.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if config.Table == "" {
		config.Table = defaults.Table
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = defaults.QueryTimeout
	}
	if !isSQLIdentifier(config.Table) {
		return nil, NewStoreConfigError(ErrMsgInvalidTableName)
	}

	db, err := dialect.open(config.ConnectionString)
	if err != nil {
		return nil, NewStoreError(err, dialect.name)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), config.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewStoreError(err, dialect.name)
	}

	store := &SQLPartialStore{
		db:      db,
		config:  config,
		dialect: dialect,
	}

	if config.AutoMigrate {
		if err := store.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return store, nil
}

func (s *SQLPartialStore) migrationsTableName() string {
	return s.config.Table + SQLMigrationsSuffix
}

// Get returns the source of a partial.
func (s *SQLPartialStore) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", NewStoreClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT source FROM %s WHERE name = %s", s.config.Table, s.dialect.bind(1))

	var source string
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", NewPartialNotFoundError(name)
		}
		return "", NewStoreError(err, name)
	}
	return source, nil
}

// Save inserts or replaces a partial.
func (s *SQLPartialStore) Save(ctx context.Context, name, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePartialName(name); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return NewStoreClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		INSERT INTO %s (name, source, updated_at)
		VALUES (%s, %s, %s)
		ON CONFLICT (name) DO UPDATE
		SET source = excluded.source, updated_at = excluded.updated_at`,
		s.config.Table, s.dialect.bind(1), s.dialect.bind(2), s.dialect.bind(3))

	if _, err := s.db.ExecContext(ctx, query, name, source, time.Now().UnixNano()); err != nil {
		return NewStoreError(err, name)
	}
	return nil
}

// Delete removes a partial.
func (s *SQLPartialStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return NewStoreClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf("DELETE FROM %s WHERE name = %s", s.config.Table, s.dialect.bind(1))

	result, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return NewStoreError(err, name)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return NewStoreError(err, name)
	}
	if affected == 0 {
		return NewPartialNotFoundError(name)
	}
	return nil
}

// List returns all partial names in sorted order.
func (s *SQLPartialStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStoreClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM %s ORDER BY name", s.config.Table))
	if err != nil {
		return nil, NewStoreError(err, s.config.Table)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, NewStoreError(err, s.config.Table)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreError(err, s.config.Table)
	}
	return names, nil
}

// Close releases database connections.
func (s *SQLPartialStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// RunMigrations applies pending schema migrations.
func (s *SQLPartialStore) RunMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version     INTEGER PRIMARY KEY,
			applied_at  BIGINT NOT NULL,
			description VARCHAR(255)
		)`, s.migrationsTableName()))
	if err != nil {
		return NewMigrationError(err, 0)
	}

	applied := make(map[int]bool)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT version FROM %s", s.migrationsTableName()))
	if err != nil {
		return NewMigrationError(err, 0)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return NewMigrationError(err, 0)
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range s.migrations() {
		if applied[m.Version] {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return NewMigrationError(err, m.Version)
		}

		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return NewMigrationError(err, m.Version)
		}

		insert := fmt.Sprintf("INSERT INTO %s (version, applied_at, description) VALUES (%s, %s, %s)",
			s.migrationsTableName(), s.dialect.bind(1), s.dialect.bind(2), s.dialect.bind(3))
		if _, err := tx.ExecContext(ctx, insert, m.Version, time.Now().UnixNano(), m.Description); err != nil {
			_ = tx.Rollback()
			return NewMigrationError(err, m.Version)
		}

		if err := tx.Commit(); err != nil {
			return NewMigrationError(err, m.Version)
		}
	}

	return nil
}

// CurrentSchemaVersion returns the highest applied migration, or 0.
func (s *SQLPartialStore) CurrentSchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT MAX(version) FROM %s", s.migrationsTableName())).Scan(&version)
	if err != nil {
		return 0, NewStoreError(err, s.migrationsTableName())
	}

	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (s *SQLPartialStore) migrations() []sqlMigration {
	return []sqlMigration{
		{
			Version:     1,
			Description: "create partials table",
			SQL: fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					name       VARCHAR(255) PRIMARY KEY,
					source     TEXT NOT NULL,
					updated_at BIGINT NOT NULL
				)`, s.config.Table),
		},
	}
}

// isSQLIdentifier reports whether s is safe to splice into a query as a table name.
func isSQLIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
