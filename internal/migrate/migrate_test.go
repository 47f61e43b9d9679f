package migrate

import (
	"strings"
	"testing"

	"github.com/schemadrift/schemadrift/database"
	"github.com/schemadrift/schemadrift/database/postgres"
	"github.com/schemadrift/schemadrift/database/sqlite"
	"github.com/schemadrift/schemadrift/internal/differ"
)

func TestRender_CreateTable(t *testing.T) {
	after := &database.Schema{
		Tables: []database.Table{
			{
				Name: "Cat",
				Columns: []database.Column{
					{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
					{Name: "name", Type: "TEXT", Nullable: false},
				},
			},
		},
	}

	steps := differ.Diff(&database.Schema{}, after)
	driver := postgres.NewDriver()

	rendered, err := Render(steps, &database.Schema{}, after, driver, database.DialectPostgres)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rendered) != 1 || rendered[0].Kind != differ.KindCreateTable {
		t.Fatalf("expected a single CreateTable step, got %#v", rendered)
	}
	expected := `CREATE TABLE "Cat" ("id" INTEGER NOT NULL, "name" TEXT NOT NULL, PRIMARY KEY ("id"));`
	if rendered[0].SQL != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, rendered[0].SQL)
	}
}

func TestRender_EnumOnPostgresUsesCreateType(t *testing.T) {
	after := &database.Schema{Enums: []database.Enum{{Name: "Status", Values: []string{"ACTIVE"}}}}
	steps := differ.Diff(&database.Schema{}, after)

	rendered, err := Render(steps, &database.Schema{}, after, postgres.NewDriver(), database.DialectPostgres)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rendered) != 1 || !strings.Contains(rendered[0].SQL, "CREATE TYPE Status AS ENUM") {
		t.Fatalf("unexpected rendering: %#v", rendered)
	}
}

func TestRender_EnumOnSQLiteIsUnsupported(t *testing.T) {
	after := &database.Schema{Enums: []database.Enum{{Name: "Status", Values: []string{"ACTIVE"}}}}
	steps := differ.Diff(&database.Schema{}, after)

	rendered, err := Render(steps, &database.Schema{}, after, sqlite.NewDriver(), database.DialectSQLite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rendered) != 1 || !strings.HasPrefix(rendered[0].SQL, "--") {
		t.Fatalf("expected a commented-out unsupported step, got %#v", rendered)
	}
}

func TestRender_SQLitePrimaryKeyChangeRedefinesTable(t *testing.T) {
	before := &database.Schema{
		Dialect: database.DialectSQLite,
		Tables:  []database.Table{{Name: "todos", Columns: []database.Column{{Name: "id", Type: "INTEGER"}}}},
	}
	after := &database.Schema{
		Dialect: database.DialectSQLite,
		Tables:  []database.Table{{Name: "todos", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}}}},
	}

	steps := differ.Diff(before, after)
	rendered, err := Render(steps, before, after, sqlite.NewDriver(), database.DialectSQLite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rendered) != 4 {
		t.Fatalf("expected the 4-statement redefine sequence, got %#v", rendered)
	}
	if rendered[0].Kind != differ.KindRedefineTable {
		t.Errorf("expected RedefineTable kind on rendered steps, got %s", rendered[0].Kind)
	}
}

func TestRender_RenameTableDialectSpecific(t *testing.T) {
	step := differ.Step{Kind: differ.KindRenameTable, OldTableName: "old_users", NewTableName: "users"}

	rendered, err := Render([]differ.Step{step}, &database.Schema{}, &database.Schema{}, postgres.NewDriver(), database.DialectPostgres)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered[0].SQL != "ALTER TABLE old_users RENAME TO users" {
		t.Errorf("unexpected postgres rename SQL: %s", rendered[0].SQL)
	}

	rendered, err = Render([]differ.Step{step}, &database.Schema{}, &database.Schema{}, sqlite.NewDriver(), database.DialectMySQL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered[0].SQL != "RENAME TABLE old_users TO users" {
		t.Errorf("unexpected mysql rename SQL: %s", rendered[0].SQL)
	}
}
