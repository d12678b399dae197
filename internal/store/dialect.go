package store

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL differences between the SQLite and PostgreSQL
// backends.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// InitStatements returns backend-specific session setup statements.
	InitStatements() []string

	// Rebind converts ? placeholders to the backend's format.
	Rebind(query string) string

	// ReturningClause returns the clause appended to INSERTs when the
	// backend cannot report LastInsertId.
	ReturningClause(column string) string

	// SupportsLastInsertID reports whether sql.Result.LastInsertId works.
	SupportsLastInsertID() bool

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool

	// AutoIncrementPK returns the column definition for an integer
	// auto-incrementing primary key.
	AutoIncrementPK() string
}

// NewDialect picks a dialect by driver name. Unknown names fall back to
// SQLite, the default backend.
func NewDialect(driver string) Dialect {
	if driver == "postgres" {
		return &postgresDialect{}
	}
	return &sqliteDialect{}
}

type sqliteDialect struct{}

func (d *sqliteDialect) DriverName() string { return "sqlite" }

func (d *sqliteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *sqliteDialect) Rebind(query string) string { return query }

func (d *sqliteDialect) ReturningClause(string) string { return "" }

func (d *sqliteDialect) SupportsLastInsertID() bool { return true }

func (d *sqliteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *sqliteDialect) AutoIncrementPK() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

type postgresDialect struct{}

func (d *postgresDialect) DriverName() string { return "postgres" }

func (d *postgresDialect) InitStatements() []string { return nil }

// Rebind converts ? placeholders to $1, $2, and so on.
func (d *postgresDialect) Rebind(query string) string {
	var b strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			fmt.Fprintf(&b, "$%d", position)
			position++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

func (d *postgresDialect) ReturningClause(column string) string {
	return " RETURNING " + column
}

func (d *postgresDialect) SupportsLastInsertID() bool { return false }

func (d *postgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	// 23505 is unique_violation
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "23505") ||
		strings.Contains(s, "unique constraint")
}

func (d *postgresDialect) AutoIncrementPK() string {
	return "BIGSERIAL PRIMARY KEY"
}
