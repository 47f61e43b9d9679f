package dbconn

import (
	"context"
	"testing"

	"github.com/schemadrift/schemadrift/database"
)

func TestDriverNameFor(t *testing.T) {
	tests := []struct {
		dialect database.Dialect
		want    string
		wantErr bool
	}{
		{database.DialectPostgres, "postgres", false},
		{database.DialectMySQL, "mysql", false},
		{database.DialectSQLite, "sqlite", false},
		{database.DialectMSSQL, "", true},
	}

	for _, tt := range tests {
		got, err := driverNameFor(tt.dialect)
		if tt.wantErr {
			if err == nil {
				t.Errorf("driverNameFor(%s): expected an error, got driver %q", tt.dialect, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("driverNameFor(%s): unexpected error: %v", tt.dialect, err)
		}
		if got != tt.want {
			t.Errorf("driverNameFor(%s) = %q, want %q", tt.dialect, got, tt.want)
		}
	}
}

func TestResolveDriverName(t *testing.T) {
	tests := []struct {
		dialect database.Dialect
		dsn     string
		want    string
	}{
		{database.DialectSQLite, "file:local.db", "sqlite"},
		{database.DialectSQLite, "libsql://example.turso.io", "libsql"},
		{database.DialectPostgres, "libsql://example.turso.io", "postgres"},
	}

	for _, tt := range tests {
		got, err := resolveDriverName(tt.dialect, tt.dsn)
		if err != nil {
			t.Errorf("resolveDriverName(%s, %s): unexpected error: %v", tt.dialect, tt.dsn, err)
		}
		if got != tt.want {
			t.Errorf("resolveDriverName(%s, %s) = %q, want %q", tt.dialect, tt.dsn, got, tt.want)
		}
	}
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := Open(context.Background(), database.DialectMSSQL, "whatever")
	if err == nil {
		t.Fatal("expected an error opening a dialect with no registered driver")
	}
}
