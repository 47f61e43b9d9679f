package mssql

import (
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/database"
)

// Generator implements database.SQLGenerator for SQL Server.
type Generator struct {
	// Schema is the schema every table is qualified under ("dbo" unless
	// overridden).
	Schema string
}

// NewGenerator creates a new SQL Server SQL generator.
func NewGenerator() *Generator {
	return &Generator{Schema: "dbo"}
}

func bracket(name string) string {
	return "[" + name + "]"
}

func (g *Generator) qualified(table string) string {
	return fmt.Sprintf("%s.%s", bracket(g.Schema), bracket(table))
}

// CreateTable generates SQL Server SQL to create a table.
func (g *Generator) CreateTable(table database.Table) (string, string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", g.qualified(table.Name)))

	var pkCols []string
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			pkCols = append(pkCols, col.Name)
		}
	}

	for i, col := range table.Columns {
		sb.WriteString("  ")
		sb.WriteString(g.FormatColumnDefinition(col))
		if i < len(table.Columns)-1 || len(pkCols) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}

	if len(pkCols) > 0 {
		quoted := make([]string, len(pkCols))
		for i, c := range pkCols {
			quoted[i] = bracket(c)
		}
		sb.WriteString(fmt.Sprintf("  CONSTRAINT %s PRIMARY KEY (%s)\n",
			bracket(fmt.Sprintf("PK__%s__%s", table.Name, pkCols[0])), strings.Join(quoted, ", ")))
	}

	sb.WriteString(")")

	description := fmt.Sprintf("Create table %s", table.Name)
	return sb.String(), description
}

// DropTable generates SQL Server SQL to drop a table.
func (g *Generator) DropTable(table database.Table) (string, string) {
	sql := fmt.Sprintf("DROP TABLE %s", g.qualified(table.Name))
	description := fmt.Sprintf("Drop table %s", table.Name)
	return sql, description
}

// AddColumn generates SQL Server SQL to add a column.
func (g *Generator) AddColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s ADD %s", g.qualified(tableName), g.FormatColumnDefinition(col))
	description := fmt.Sprintf("Add column %s to table %s", col.Name, tableName)
	return sql, description
}

// DropColumn generates SQL Server SQL to drop a column.
func (g *Generator) DropColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", g.qualified(tableName), bracket(col.Name))
	description := fmt.Sprintf("Drop column %s from table %s", col.Name, tableName)
	return sql, description
}

// ModifyColumn generates SQL Server SQL to modify a column.
func (g *Generator) ModifyColumn(tableName string, diff database.ColumnDiff) []database.PlanStep {
	var steps []database.PlanStep

	if contains(diff.Changes, "type") || contains(diff.Changes, "nullable") {
		sql := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", g.qualified(tableName), g.FormatColumnDefinition(diff.New))
		steps = append(steps, database.PlanStep{
			Description: fmt.Sprintf("Change type/nullability of %s.%s", tableName, diff.ColumnName),
			SQL:         sql,
		})
	}

	if contains(diff.Changes, "default") {
		dropSQL := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s",
			g.qualified(tableName), bracket(fmt.Sprintf("DF__%s__%s", tableName, diff.ColumnName)))
		steps = append(steps, database.PlanStep{
			Description: fmt.Sprintf("Drop default constraint on %s.%s", tableName, diff.ColumnName),
			SQL:         dropSQL,
		})
		if diff.New.Default != nil {
			addSQL := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s DEFAULT %s FOR %s",
				g.qualified(tableName), bracket(fmt.Sprintf("DF__%s__%s", tableName, diff.ColumnName)),
				*diff.New.Default, bracket(diff.ColumnName))
			steps = append(steps, database.PlanStep{
				Description: fmt.Sprintf("Add default constraint on %s.%s", tableName, diff.ColumnName),
				SQL:         addSQL,
			})
		}
	}

	return steps
}

// AddIndex generates SQL Server SQL to add an index.
func (g *Generator) AddIndex(tableName string, idx database.Index) (string, string) {
	uniqueStr := ""
	if idx.Unique {
		uniqueStr = "UNIQUE "
	}
	columns := quoteColumns(idx.Columns)
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", uniqueStr, bracket(idx.Name), g.qualified(tableName), columns)
	description := fmt.Sprintf("Create index %s on table %s", idx.Name, tableName)
	return sql, description
}

// DropIndex generates SQL Server SQL to drop an index.
func (g *Generator) DropIndex(tableName string, idx database.Index) (string, string) {
	sql := fmt.Sprintf("DROP INDEX %s ON %s", bracket(idx.Name), g.qualified(tableName))
	description := fmt.Sprintf("Drop index %s from table %s", idx.Name, tableName)
	return sql, description
}

// AddForeignKey generates SQL Server SQL to add a foreign key.
func (g *Generator) AddForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	columns := quoteColumns(fk.Columns)
	refColumns := quoteColumns(fk.ReferencedColumns)

	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		g.qualified(tableName), bracket(fk.Name), columns, g.qualified(fk.ReferencedTable), refColumns)

	if fk.OnDelete != nil {
		sql += fmt.Sprintf(" ON DELETE %s", *fk.OnDelete)
	}
	if fk.OnUpdate != nil {
		sql += fmt.Sprintf(" ON UPDATE %s", *fk.OnUpdate)
	}

	description := fmt.Sprintf("Add foreign key %s to table %s", fk.Name, tableName)
	return sql, description
}

// DropForeignKey generates SQL Server SQL to drop a foreign key.
func (g *Generator) DropForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", g.qualified(tableName), bracket(fk.Name))
	description := fmt.Sprintf("Drop foreign key %s from table %s", fk.Name, tableName)
	return sql, description
}

// FormatColumnDefinition formats a column definition for CREATE/ALTER statements.
func (g *Generator) FormatColumnDefinition(col database.Column) string {
	var sb strings.Builder

	typ := col.Type
	if typ == "String" || typ == "" {
		typ = "NVARCHAR(1000)"
	}
	sb.WriteString(fmt.Sprintf("%s %s", bracket(col.Name), typ))

	if col.Nullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}

	return sb.String()
}

// ParameterPlaceholder returns the SQL Server parameter placeholder (@p1, @p2, ...).
func (g *Generator) ParameterPlaceholder(position int) string {
	return fmt.Sprintf("@p%d", position)
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = bracket(c)
	}
	return strings.Join(quoted, ", ")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
