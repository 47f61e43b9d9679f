package mssql

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
			{Name: "email", Type: "NVARCHAR(1000)", Nullable: false},
		},
	}

	sql, desc := gen.CreateTable(table)

	if !strings.Contains(desc, "Create table users") {
		t.Errorf("expected description to mention users, got: %s", desc)
	}
	if !strings.Contains(sql, "[dbo].[users]") {
		t.Errorf("expected schema-qualified bracketed table name, got: %s", sql)
	}
	if !strings.Contains(sql, "CONSTRAINT [PK__users__id] PRIMARY KEY ([id])") {
		t.Errorf("expected named primary key constraint, got: %s", sql)
	}
}

func TestGenerator_FormatColumnDefinition_DefaultStringWidth(t *testing.T) {
	gen := NewGenerator()
	col := database.Column{Name: "name", Type: "String", Nullable: true}
	def := gen.FormatColumnDefinition(col)
	if !strings.Contains(def, "NVARCHAR(1000)") {
		t.Errorf("expected String to default to NVARCHAR(1000), got: %s", def)
	}
}

func TestGenerator_ParameterPlaceholder(t *testing.T) {
	gen := NewGenerator()
	if gen.ParameterPlaceholder(2) != "@p2" {
		t.Errorf("expected '@p2' placeholder, got %s", gen.ParameterPlaceholder(2))
	}
}
