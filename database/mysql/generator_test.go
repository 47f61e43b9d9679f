package mysql

import (
	"strings"
	"testing"

	"github.com/schemadrift/schemadrift/database"
)

func TestGenerator_CreateTable(t *testing.T) {
	gen := NewGenerator()

	table := database.Table{
		Name: "users",
		Columns: []database.Column{
			{Name: "id", Type: "INT", Nullable: false, IsPrimaryKey: true},
			{Name: "email", Type: "VARCHAR(191)", Nullable: false},
		},
	}

	sql, desc := gen.CreateTable(table)

	if !strings.Contains(desc, "Create table users") {
		t.Errorf("expected description to mention users, got: %s", desc)
	}
	if !strings.Contains(sql, "CREATE TABLE `users`") {
		t.Errorf("expected backtick-quoted table name, got: %s", sql)
	}
	if !strings.Contains(sql, "utf8mb4") {
		t.Errorf("expected utf8mb4 charset clause, got: %s", sql)
	}
}

func TestGenerator_FormatColumnDefinition_DefaultStringWidth(t *testing.T) {
	gen := NewGenerator()
	col := database.Column{Name: "name", Type: "String", Nullable: true}
	def := gen.FormatColumnDefinition(col)
	if !strings.Contains(def, "VARCHAR(191)") {
		t.Errorf("expected String to default to VARCHAR(191), got: %s", def)
	}
}

func TestGenerator_AddForeignKey(t *testing.T) {
	gen := NewGenerator()
	fk := database.ForeignKey{
		Name:              "fk_post_author",
		Columns:           []string{"author_id"},
		ReferencedTable:   "users",
		ReferencedColumns: []string{"id"},
	}
	sql, _ := gen.AddForeignKey("posts", fk)
	if !strings.Contains(sql, "FOREIGN KEY (`author_id`) REFERENCES `users` (`id`)") {
		t.Errorf("unexpected SQL: %s", sql)
	}
}

func TestGenerator_ParameterPlaceholder(t *testing.T) {
	gen := NewGenerator()
	if gen.ParameterPlaceholder(1) != "?" {
		t.Errorf("expected '?' placeholder")
	}
}
