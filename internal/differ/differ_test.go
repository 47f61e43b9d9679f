package differ

import (
	"testing"

	"github.com/schemadrift/schemadrift/database"
)

func TestDiff_NoChanges(t *testing.T) {
	schema := &database.Schema{
		Tables: []database.Table{
			{Name: "users", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}}},
		},
	}
	steps := Diff(schema, schema)
	if len(steps) != 0 {
		t.Fatalf("expected no steps diffing a schema against itself, got %#v", steps)
	}
}

func TestDiff_CreateTableOrderRespectsForeignKeys(t *testing.T) {
	after := &database.Schema{
		Tables: []database.Table{
			{
				Name:    "posts",
				Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}, {Name: "author_id", Type: "INTEGER"}},
				ForeignKeys: []database.ForeignKey{
					{Name: "fk_posts_author", Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
				},
			},
			{Name: "users", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}}},
		},
	}

	steps := Diff(&database.Schema{}, after)

	var order []string
	for _, s := range steps {
		if s.Kind == KindCreateTable {
			order = append(order, s.Table)
		}
	}
	if len(order) != 2 || order[0] != "users" || order[1] != "posts" {
		t.Fatalf("expected users before posts, got %v", order)
	}

	// AddForeignKey must come after both CreateTable steps.
	fkIdx, usersIdx, postsIdx := -1, -1, -1
	for i, s := range steps {
		switch {
		case s.Kind == KindAddForeignKey:
			fkIdx = i
		case s.Kind == KindCreateTable && s.Table == "users":
			usersIdx = i
		case s.Kind == KindCreateTable && s.Table == "posts":
			postsIdx = i
		}
	}
	if fkIdx < usersIdx || fkIdx < postsIdx {
		t.Fatalf("expected AddForeignKey after both CreateTable steps, got order %#v", steps)
	}
}

func TestDiff_DropForeignKeyBeforeDropTable(t *testing.T) {
	before := &database.Schema{
		Tables: []database.Table{
			{
				Name:    "posts",
				Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}},
				ForeignKeys: []database.ForeignKey{
					{Name: "fk_posts_author", Columns: []string{"author_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
				},
			},
			{Name: "users", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}}},
		},
	}
	after := &database.Schema{
		Tables: []database.Table{
			{Name: "posts", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}}},
		},
	}

	steps := Diff(before, after)

	dropFKIdx, dropTableIdx := -1, -1
	for i, s := range steps {
		if s.Kind == KindDropForeignKey {
			dropFKIdx = i
		}
		if s.Kind == KindDropTable && s.Table == "users" {
			dropTableIdx = i
		}
	}
	if dropFKIdx == -1 || dropTableIdx == -1 {
		t.Fatalf("expected both a DropForeignKey and a DropTable step, got %#v", steps)
	}
	if dropFKIdx > dropTableIdx {
		t.Fatalf("expected DropForeignKey before DropTable, got order %#v", steps)
	}
}

func TestDiff_AlterTableGroupsDropAlterAdd(t *testing.T) {
	before := &database.Schema{
		Tables: []database.Table{
			{
				Name: "users",
				Columns: []database.Column{
					{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
					{Name: "nickname", Type: "TEXT", Nullable: true},
					{Name: "age", Type: "INTEGER", Nullable: true},
				},
			},
		},
	}
	after := &database.Schema{
		Tables: []database.Table{
			{
				Name: "users",
				Columns: []database.Column{
					{Name: "id", Type: "INTEGER", IsPrimaryKey: true},
					{Name: "age", Type: "INTEGER", Nullable: false},
					{Name: "email", Type: "TEXT", Nullable: true},
				},
			},
		},
	}

	steps := Diff(before, after)

	var ops []AlterOp
	for _, s := range steps {
		if s.Kind == KindAlterTable {
			ops = append(ops, s.AlterOp)
		}
	}
	if len(ops) != 3 || ops[0] != OpDropColumn || ops[1] != OpAlterColumn || ops[2] != OpAddColumn {
		t.Fatalf("expected drop, alter, add order, got %v", ops)
	}
}

func TestDiff_SQLitePrimaryKeyChangeRedefinesTable(t *testing.T) {
	before := &database.Schema{
		Dialect: database.DialectSQLite,
		Tables: []database.Table{
			{Name: "users", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: false}}},
		},
	}
	after := &database.Schema{
		Dialect: database.DialectSQLite,
		Tables: []database.Table{
			{Name: "users", Columns: []database.Column{{Name: "id", Type: "INTEGER", IsPrimaryKey: true}}},
		},
	}

	steps := Diff(before, after)
	if len(steps) != 1 || steps[0].Kind != KindRedefineTable {
		t.Fatalf("expected a single RedefineTable step, got %#v", steps)
	}
}

func TestDiff_EnumLifecycle(t *testing.T) {
	before := &database.Schema{Enums: []database.Enum{{Name: "Status", Values: []string{"ACTIVE", "DONE"}}}}
	after := &database.Schema{Enums: []database.Enum{{Name: "Status", Values: []string{"ACTIVE", "DONE", "ARCHIVED"}}}}

	steps := Diff(before, after)
	if len(steps) != 1 || steps[0].Kind != KindAlterEnum {
		t.Fatalf("expected a single AlterEnum step, got %#v", steps)
	}
}
