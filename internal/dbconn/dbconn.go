// Package dbconn is the one place blank-importing `database/sql`
// drivers, so that opening a connection for a dialect is a matter of
// picking the right driver name. No other package's non-test code imports
// a concrete driver package directly (the postgres and sqlite introspector
// tests blank-import their drivers to open test databases), matching the teacher's
// internal/driver wiring convention (drivers are a connection-opening
// concern, not an introspector/generator concern).
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/schemadrift/schemadrift/database"
)

// Open opens and pings a *sql.DB for dialect using dsn, with a 5s
// connect timeout. The mssql dialect has no pure-Go driver grounded in
// the retrieved pack (see DESIGN.md); callers needing SQL Server must
// supply their own *sql.DB and use database/mssql's Introspector/
// Generator directly.
func Open(ctx context.Context, dialect database.Dialect, dsn string) (*sql.DB, error) {
	driverName, err := resolveDriverName(dialect, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	return db, nil
}

func driverNameFor(dialect database.Dialect) (string, error) {
	switch dialect {
	case database.DialectPostgres:
		return "postgres", nil
	case database.DialectMySQL:
		return "mysql", nil
	case database.DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("no registered driver for dialect %q", dialect)
	}
}

// resolveDriverName picks the sql.Open driver name for dialect, special-
// casing a libsql:// DSN under the SQLite dialect: Turso's database is
// SQLite-compatible (same introspector and generator), but it speaks a
// remote HTTP protocol the modernc.org/sqlite driver can't dial, so it
// needs the libsql driver registered under its own name.
func resolveDriverName(dialect database.Dialect, dsn string) (string, error) {
	driverName, err := driverNameFor(dialect)
	if err != nil {
		return "", err
	}
	if dialect == database.DialectSQLite && strings.HasPrefix(dsn, "libsql://") {
		return "libsql", nil
	}
	return driverName, nil
}
