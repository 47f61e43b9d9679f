package mysql

import (
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/database"
)

// Generator implements database.SQLGenerator for MySQL.
type Generator struct{}

// NewGenerator creates a new MySQL SQL generator.
func NewGenerator() *Generator {
	return &Generator{}
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}

// CreateTable generates MySQL SQL to create a table.
func (g *Generator) CreateTable(table database.Table) (string, string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", quoteIdent(table.Name)))

	var pkCols []string
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			pkCols = append(pkCols, quoteIdent(col.Name))
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
		sb.WriteString(fmt.Sprintf("  PRIMARY KEY (%s)\n", strings.Join(pkCols, ", ")))
	}

	sb.WriteString(") DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")

	description := fmt.Sprintf("Create table %s", table.Name)
	return sb.String(), description
}

// DropTable generates MySQL SQL to drop a table.
func (g *Generator) DropTable(table database.Table) (string, string) {
	sql := fmt.Sprintf("DROP TABLE %s", quoteIdent(table.Name))
	description := fmt.Sprintf("Drop table %s", table.Name)
	return sql, description
}

// AddColumn generates MySQL SQL to add a column.
func (g *Generator) AddColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdent(tableName), g.FormatColumnDefinition(col))
	description := fmt.Sprintf("Add column %s to table %s", col.Name, tableName)
	return sql, description
}

// DropColumn generates MySQL SQL to drop a column.
func (g *Generator) DropColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdent(tableName), quoteIdent(col.Name))
	description := fmt.Sprintf("Drop column %s from table %s", col.Name, tableName)
	return sql, description
}

// ModifyColumn generates MySQL SQL to modify a column. Unlike Postgres,
// MySQL folds type/nullability/default changes into a single MODIFY
// COLUMN clause that must restate the full column definition.
func (g *Generator) ModifyColumn(tableName string, diff database.ColumnDiff) []database.PlanStep {
	if len(diff.Changes) == 0 {
		return nil
	}
	sql := fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", quoteIdent(tableName), g.FormatColumnDefinition(diff.New))
	return []database.PlanStep{{
		Description: fmt.Sprintf("Modify column %s.%s", tableName, diff.ColumnName),
		SQL:         sql,
	}}
}

// AddIndex generates MySQL SQL to add an index.
func (g *Generator) AddIndex(tableName string, idx database.Index) (string, string) {
	uniqueStr := ""
	if idx.Unique {
		uniqueStr = "UNIQUE "
	}
	columns := quoteColumns(idx.Columns)
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", uniqueStr, quoteIdent(idx.Name), quoteIdent(tableName), columns)
	description := fmt.Sprintf("Create index %s on table %s", idx.Name, tableName)
	return sql, description
}

// DropIndex generates MySQL SQL to drop an index.
func (g *Generator) DropIndex(tableName string, idx database.Index) (string, string) {
	sql := fmt.Sprintf("DROP INDEX %s ON %s", quoteIdent(idx.Name), quoteIdent(tableName))
	description := fmt.Sprintf("Drop index %s from table %s", idx.Name, tableName)
	return sql, description
}

// AddForeignKey generates MySQL SQL to add a foreign key.
func (g *Generator) AddForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	columns := quoteColumns(fk.Columns)
	refColumns := quoteColumns(fk.ReferencedColumns)

	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		quoteIdent(tableName), quoteIdent(fk.Name), columns, quoteIdent(fk.ReferencedTable), refColumns)

	if fk.OnDelete != nil {
		sql += fmt.Sprintf(" ON DELETE %s", *fk.OnDelete)
	}
	if fk.OnUpdate != nil {
		sql += fmt.Sprintf(" ON UPDATE %s", *fk.OnUpdate)
	}

	description := fmt.Sprintf("Add foreign key %s to table %s", fk.Name, tableName)
	return sql, description
}

// DropForeignKey generates MySQL SQL to drop a foreign key.
func (g *Generator) DropForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", quoteIdent(tableName), quoteIdent(fk.Name))
	description := fmt.Sprintf("Drop foreign key %s from table %s", fk.Name, tableName)
	return sql, description
}

// FormatColumnDefinition formats a column definition for CREATE/ALTER/MODIFY statements.
func (g *Generator) FormatColumnDefinition(col database.Column) string {
	var sb strings.Builder

	typ := col.Type
	if typ == "String" || typ == "" {
		typ = "VARCHAR(191)"
	}
	sb.WriteString(fmt.Sprintf("%s %s", quoteIdent(col.Name), typ))

	if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		sb.WriteString(fmt.Sprintf(" DEFAULT %s", *col.Default))
	}

	return sb.String()
}

// ParameterPlaceholder returns the MySQL parameter placeholder (?).
func (g *Generator) ParameterPlaceholder(position int) string {
	return "?"
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
