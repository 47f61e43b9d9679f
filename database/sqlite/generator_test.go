package sqlite

import (
	"strings"
	"testing"

	"github.com/schemadrift/schemadrift/database"
)

func TestGenerator_CreateTable(t *testing.T) {
	gen := NewGenerator()

	table := database.Table{
		Name: "Cat",
		Columns: []database.Column{
			{Name: "id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
			{Name: "name", Type: "TEXT", Nullable: false},
		},
	}

	sql, desc := gen.CreateTable(table)

	if !strings.Contains(desc, "Create table Cat") {
		t.Errorf("Expected description to contain 'Create table Cat', got: %s", desc)
	}

	expected := `CREATE TABLE "Cat" ("id" INTEGER NOT NULL, "name" TEXT NOT NULL, PRIMARY KEY ("id"));`
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

func TestGenerator_CreateTable_CompoundPrimaryKey(t *testing.T) {
	gen := NewGenerator()

	table := database.Table{
		Name: "team_members",
		Columns: []database.Column{
			{Name: "user_id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
			{Name: "team_id", Type: "INTEGER", Nullable: false, IsPrimaryKey: true},
		},
	}

	sql, _ := gen.CreateTable(table)

	expected := `CREATE TABLE "team_members" ("user_id" INTEGER NOT NULL, "team_id" INTEGER NOT NULL, PRIMARY KEY ("user_id", "team_id"));`
	if sql != expected {
		t.Errorf("Expected a single table-level PRIMARY KEY clause:\n%s\nGot:\n%s", expected, sql)
	}
	if strings.Count(sql, "PRIMARY KEY") != 1 {
		t.Errorf("Expected exactly one PRIMARY KEY clause, got: %s", sql)
	}
}

func TestGenerator_DropTable(t *testing.T) {
	gen := NewGenerator()

	table := database.Table{Name: "old_table"}
	sql, desc := gen.DropTable(table)

	// SQLite doesn't support CASCADE
	if sql != `DROP TABLE "old_table"` {
		t.Errorf(`Expected 'DROP TABLE "old_table"' (no CASCADE), got: %s`, sql)
	}

	if !strings.Contains(desc, "Drop table old_table") {
		t.Errorf("Expected description to contain 'Drop table old_table', got: %s", desc)
	}
}

func TestGenerator_AddColumn(t *testing.T) {
	gen := NewGenerator()

	col := database.Column{
		Name:     "phone",
		Type:     "text",
		Nullable: true,
	}

	sql, desc := gen.AddColumn("users", col)

	if !strings.Contains(sql, `ALTER TABLE "users" ADD COLUMN "phone" text`) {
		t.Errorf("Expected ALTER TABLE ADD COLUMN, got: %s", sql)
	}

	if strings.Contains(sql, "NOT NULL") {
		t.Errorf("Expected nullable column (no NOT NULL), got: %s", sql)
	}

	if !strings.Contains(desc, "Add column phone to table users") {
		t.Errorf("Expected appropriate description, got: %s", desc)
	}
}

func TestGenerator_DropColumn(t *testing.T) {
	gen := NewGenerator()

	col := database.Column{Name: "deprecated_field"}
	sql, desc := gen.DropColumn("users", col)

	if sql != `ALTER TABLE "users" DROP COLUMN "deprecated_field"` {
		t.Errorf(`Expected 'ALTER TABLE "users" DROP COLUMN "deprecated_field"', got: %s`, sql)
	}

	if !strings.Contains(desc, "Drop column deprecated_field from table users") {
		t.Errorf("Expected appropriate description, got: %s", desc)
	}
}

func TestGenerator_ModifyColumn(t *testing.T) {
	gen := NewGenerator()

	diff := database.ColumnDiff{
		ColumnName: "age",
		Old:        database.Column{Name: "age", Type: "integer", Nullable: true},
		New:        database.Column{Name: "age", Type: "bigint", Nullable: true},
		Changes:    []string{"type"},
	}

	steps := gen.ModifyColumn("users", diff)

	// SQLite doesn't support ALTER COLUMN, should return warning step
	if len(steps) != 1 {
		t.Fatalf("Expected 1 warning step, got %d", len(steps))
	}

	if !strings.Contains(steps[0].Description, "SQLite limitation") {
		t.Errorf("Expected limitation warning in description, got: %s", steps[0].Description)
	}

	if !strings.Contains(steps[0].SQL, "--") {
		t.Errorf("Expected comment SQL, got: %s", steps[0].SQL)
	}
}

func TestGenerator_ModifyColumn_NoChanges(t *testing.T) {
	gen := NewGenerator()

	diff := database.ColumnDiff{
		ColumnName: "age",
		Old:        database.Column{Name: "age", Type: "integer", Nullable: true},
		New:        database.Column{Name: "age", Type: "integer", Nullable: true},
		Changes:    []string{},
	}

	steps := gen.ModifyColumn("users", diff)

	// No changes should result in no steps
	if len(steps) != 0 {
		t.Errorf("Expected 0 steps for no changes, got %d", len(steps))
	}
}

func TestGenerator_AddIndex(t *testing.T) {
	gen := NewGenerator()

	idx := database.Index{
		Name:    "idx_users_email",
		Columns: []string{"email"},
		Unique:  true,
	}

	sql, desc := gen.AddIndex("users", idx)

	if sql != `CREATE UNIQUE INDEX "idx_users_email" ON "users" ("email")` {
		t.Errorf("Expected CREATE UNIQUE INDEX, got: %s", sql)
	}

	if !strings.Contains(desc, "Create index idx_users_email on table users") {
		t.Errorf("Expected appropriate description, got: %s", desc)
	}
}

func TestGenerator_AddIndex_MultiColumn(t *testing.T) {
	gen := NewGenerator()

	idx := database.Index{
		Name:    "idx_users_name_email",
		Columns: []string{"name", "email"},
		Unique:  false,
	}

	sql, _ := gen.AddIndex("users", idx)

	if sql != `CREATE INDEX "idx_users_name_email" ON "users" ("name", "email")` {
		t.Errorf("Expected multi-column index, got: %s", sql)
	}
}

func TestGenerator_DropIndex(t *testing.T) {
	gen := NewGenerator()

	idx := database.Index{Name: "idx_old"}
	sql, desc := gen.DropIndex("users", idx)

	if sql != `DROP INDEX "idx_old"` {
		t.Errorf(`Expected 'DROP INDEX "idx_old"', got: %s`, sql)
	}

	if !strings.Contains(desc, "Drop index idx_old from table users") {
		t.Errorf("Expected appropriate description, got: %s", desc)
	}
}

func TestGenerator_AddForeignKey(t *testing.T) {
	gen := NewGenerator()

	fk := database.ForeignKey{
		Name:              "fk_posts_user_id",
		Columns:           []string{"user_id"},
		ReferencedTable:   "users",
		ReferencedColumns: []string{"id"},
	}

	sql, desc := gen.AddForeignKey("posts", fk)

	// SQLite doesn't support ALTER TABLE ADD FOREIGN KEY
	if !strings.Contains(desc, "SQLite limitation") {
		t.Errorf("Expected limitation warning in description, got: %s", desc)
	}

	if !strings.Contains(sql, "--") {
		t.Errorf("Expected comment SQL, got: %s", sql)
	}
}

func TestGenerator_DropForeignKey(t *testing.T) {
	gen := NewGenerator()

	fk := database.ForeignKey{Name: "fk_posts_user_id"}
	sql, desc := gen.DropForeignKey("posts", fk)

	// SQLite doesn't support ALTER TABLE DROP CONSTRAINT
	if !strings.Contains(desc, "SQLite limitation") {
		t.Errorf("Expected limitation warning in description, got: %s", desc)
	}

	if !strings.Contains(sql, "--") {
		t.Errorf("Expected comment SQL, got: %s", sql)
	}
}

func TestGenerator_FormatColumnDefinition(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		name     string
		column   database.Column
		expected []string // Parts that should be in the output
		notIn    []string // Parts that should NOT be in the output
	}{
		{
			name: "simple column",
			column: database.Column{
				Name:     "name",
				Type:     "text",
				Nullable: true,
			},
			expected: []string{`"name" text`},
			notIn:    []string{"NOT NULL", "PRIMARY KEY"},
		},
		{
			name: "not null column",
			column: database.Column{
				Name:     "email",
				Type:     "text",
				Nullable: false,
			},
			expected: []string{`"email" text`, "NOT NULL"},
		},
		{
			name: "column with default",
			column: database.Column{
				Name:     "age",
				Type:     "integer",
				Nullable: true,
				Default:  ptrString("0"),
			},
			expected: []string{`"age" integer`, "DEFAULT 0"},
		},
		{
			// Primary key is rendered as a table-level clause by CreateTable,
			// not inline here, so a compound @@id doesn't double up.
			name: "primary key column",
			column: database.Column{
				Name:         "id",
				Type:         "integer",
				Nullable:     false,
				IsPrimaryKey: true,
			},
			expected: []string{`"id" integer`, "NOT NULL"},
			notIn:    []string{"PRIMARY KEY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gen.FormatColumnDefinition(tt.column)
			for _, exp := range tt.expected {
				if !strings.Contains(result, exp) {
					t.Errorf("Expected result to contain '%s', got: %s", exp, result)
				}
			}
			for _, notExp := range tt.notIn {
				if strings.Contains(result, notExp) {
					t.Errorf("Expected result to NOT contain '%s', got: %s", notExp, result)
				}
			}
		})
	}
}

func TestGenerator_FormatColumnDefinition_NoInlinePrimaryKey(t *testing.T) {
	gen := NewGenerator()

	col := database.Column{
		Name:         "id",
		Type:         "integer",
		Nullable:     false,
		IsPrimaryKey: true,
	}

	result := gen.FormatColumnDefinition(col)

	if strings.Contains(result, "PRIMARY KEY") {
		t.Errorf("Expected no inline PRIMARY KEY (it belongs at the table level), got: %s", result)
	}
	if !strings.Contains(result, "NOT NULL") {
		t.Error("Expected NOT NULL in result")
	}
}

func TestGenerator_ParameterPlaceholder(t *testing.T) {
	gen := NewGenerator()

	// SQLite uses ? for all positions
	tests := []struct {
		position int
		expected string
	}{
		{1, "?"},
		{2, "?"},
		{10, "?"},
	}

	for _, tt := range tests {
		result := gen.ParameterPlaceholder(tt.position)
		if result != tt.expected {
			t.Errorf("ParameterPlaceholder(%d) = %s, want %s", tt.position, result, tt.expected)
		}
	}
}

func TestGenerator_RedefineTable(t *testing.T) {
	gen := NewGenerator()

	steps := gen.RedefineTable("todos", []database.Column{
		{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
		{Name: "title", Type: "TEXT", Nullable: false},
	})

	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if !strings.Contains(steps[0].SQL, `CREATE TABLE "todos__schemadrift_new"`) {
		t.Errorf("expected first step to create replacement table, got: %s", steps[0].SQL)
	}
	if !strings.Contains(steps[1].SQL, `INSERT INTO "todos__schemadrift_new" ("id", "title") SELECT "id", "title" FROM "todos"`) {
		t.Errorf("expected second step to copy rows, got: %s", steps[1].SQL)
	}
	if steps[2].SQL != `DROP TABLE "todos"` {
		t.Errorf("expected third step to drop the original table, got: %s", steps[2].SQL)
	}
	if steps[3].SQL != `ALTER TABLE "todos__schemadrift_new" RENAME TO "todos"` {
		t.Errorf("expected fourth step to rename the replacement, got: %s", steps[3].SQL)
	}
}

// Helper function
func ptrString(s string) *string {
	return &s
}
