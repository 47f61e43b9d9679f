package postgres

import (
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/database"
)

// Generator implements database.SQLGenerator for PostgreSQL
type Generator struct{}

// NewGenerator creates a new PostgreSQL SQL generator
func NewGenerator() *Generator {
	return &Generator{}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

// CreateTable generates PostgreSQL SQL to create a table. Columns and the
// table-level PRIMARY KEY clause (if any) render on a single line,
// terminated with a semicolon, matching the byte-stable rendering spec
// requires.
func (g *Generator) CreateTable(table database.Table) (string, string) {
	parts := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		parts = append(parts, g.FormatColumnDefinition(col))
	}

	var pkCols []string
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			pkCols = append(pkCols, quoteIdent(col.Name))
		}
	}
	if len(pkCols) > 0 {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pkCols, ", ")))
	}

	sql := fmt.Sprintf("CREATE TABLE %s (%s);", quoteIdent(table.Name), strings.Join(parts, ", "))

	description := fmt.Sprintf("Create table %s", table.Name)
	return sql, description
}

// DropTable generates PostgreSQL SQL to drop a table
func (g *Generator) DropTable(table database.Table) (string, string) {
	sql := fmt.Sprintf("DROP TABLE %s CASCADE", quoteIdent(table.Name))
	description := fmt.Sprintf("Drop table %s", table.Name)
	return sql, description
}

// AddColumn generates PostgreSQL SQL to add a column
func (g *Generator) AddColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
		quoteIdent(tableName),
		g.FormatColumnDefinition(col))
	description := fmt.Sprintf("Add column %s to table %s", col.Name, tableName)
	return sql, description
}

// DropColumn generates PostgreSQL SQL to drop a column
func (g *Generator) DropColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdent(tableName), quoteIdent(col.Name))
	description := fmt.Sprintf("Drop column %s from table %s", col.Name, tableName)
	return sql, description
}

// ModifyColumn generates PostgreSQL SQL to modify a column
func (g *Generator) ModifyColumn(tableName string, diff database.ColumnDiff) []database.PlanStep {
	steps := []database.PlanStep{}

	// Handle type changes
	if contains(diff.Changes, "type") {
		sql := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
			quoteIdent(tableName), quoteIdent(diff.ColumnName), diff.New.Type)
		steps = append(steps, database.PlanStep{
			Description: fmt.Sprintf("Change type of %s.%s from %s to %s",
				tableName, diff.ColumnName, diff.Old.Type, diff.New.Type),
			SQL:         sql,
		})
	}

	// Handle nullability changes
	if contains(diff.Changes, "nullable") {
		var sql string
		if diff.New.Nullable {
			sql = fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL",
				quoteIdent(tableName), quoteIdent(diff.ColumnName))
		} else {
			sql = fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL",
				quoteIdent(tableName), quoteIdent(diff.ColumnName))
		}
		steps = append(steps, database.PlanStep{
			Description: fmt.Sprintf("Change nullability of %s.%s to %t",
				tableName, diff.ColumnName, diff.New.Nullable),
			SQL:         sql,
		})
	}

	// Handle default value changes
	if contains(diff.Changes, "default") {
		var sql string
		if diff.New.Default == nil {
			sql = fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT",
				quoteIdent(tableName), quoteIdent(diff.ColumnName))
		} else {
			sql = fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s",
				quoteIdent(tableName), quoteIdent(diff.ColumnName), *diff.New.Default)
		}
		steps = append(steps, database.PlanStep{
			Description: fmt.Sprintf("Change default of %s.%s",
				tableName, diff.ColumnName),
			SQL:         sql,
		})
	}

	return steps
}

// AddIndex generates PostgreSQL SQL to add an index
func (g *Generator) AddIndex(tableName string, idx database.Index) (string, string) {
	uniqueStr := ""
	if idx.Unique {
		uniqueStr = "UNIQUE "
	}

	// Format column list
	columns := quoteColumns(idx.Columns)

	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		uniqueStr, quoteIdent(idx.Name), quoteIdent(tableName), columns)

	description := fmt.Sprintf("Create index %s on table %s", idx.Name, tableName)
	return sql, description
}

// DropIndex generates PostgreSQL SQL to drop an index
func (g *Generator) DropIndex(tableName string, idx database.Index) (string, string) {
	sql := fmt.Sprintf("DROP INDEX %s", quoteIdent(idx.Name))
	description := fmt.Sprintf("Drop index %s from table %s", idx.Name, tableName)
	return sql, description
}

// AddForeignKey generates PostgreSQL SQL to add a foreign key
func (g *Generator) AddForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	// Format column lists
	columns := quoteColumns(fk.Columns)
	refColumns := quoteColumns(fk.ReferencedColumns)

	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		quoteIdent(tableName), quoteIdent(fk.Name), columns, quoteIdent(fk.ReferencedTable), refColumns)

	// Add ON DELETE and ON UPDATE actions if specified
	if fk.OnDelete != nil {
		sql += fmt.Sprintf(" ON DELETE %s", *fk.OnDelete)
	}
	if fk.OnUpdate != nil {
		sql += fmt.Sprintf(" ON UPDATE %s", *fk.OnUpdate)
	}

	description := fmt.Sprintf("Add foreign key %s to table %s", fk.Name, tableName)
	return sql, description
}

// DropForeignKey generates PostgreSQL SQL to drop a foreign key
func (g *Generator) DropForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", quoteIdent(tableName), quoteIdent(fk.Name))
	description := fmt.Sprintf("Drop foreign key %s from table %s", fk.Name, tableName)
	return sql, description
}

// FormatColumnDefinition formats a column definition for CREATE/ALTER
// statements. Primary key is expressed as a table-level clause in
// CreateTable, not inline here, so a compound @@id doesn't emit more
// than one PRIMARY KEY keyword.
func (g *Generator) FormatColumnDefinition(col database.Column) string {
	var sb strings.Builder

	// Column name and type
	sb.WriteString(fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type))

	// Nullability
	if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}

	// Default value
	if col.Default != nil {
		sb.WriteString(fmt.Sprintf(" DEFAULT %s", *col.Default))
	}

	return sb.String()
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// ParameterPlaceholder returns the PostgreSQL parameter placeholder ($1, $2, etc.)
func (g *Generator) ParameterPlaceholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

// CreateEnum generates PostgreSQL SQL to create a named enum type.
func (g *Generator) CreateEnum(enum database.Enum) (string, string) {
	values := make([]string, len(enum.Values))
	for i, v := range enum.Values {
		values[i] = fmt.Sprintf("'%s'", v)
	}
	sql := fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", enum.Name, strings.Join(values, ", "))
	description := fmt.Sprintf("Create enum %s", enum.Name)
	return sql, description
}

// DropEnum generates PostgreSQL SQL to drop a named enum type.
func (g *Generator) DropEnum(enum database.Enum) (string, string) {
	sql := fmt.Sprintf("DROP TYPE %s", enum.Name)
	description := fmt.Sprintf("Drop enum %s", enum.Name)
	return sql, description
}

// AlterEnum generates PostgreSQL SQL to add newly introduced values to an
// enum type. PostgreSQL has no single statement to remove or reorder enum
// values; removing a value requires recreating the type, which callers
// needing that must express as a DropEnum followed by a CreateEnum.
func (g *Generator) AlterEnum(old, new database.Enum) []database.PlanStep {
	oldValues := make(map[string]bool, len(old.Values))
	for _, v := range old.Values {
		oldValues[v] = true
	}

	var steps []database.PlanStep
	for _, v := range new.Values {
		if oldValues[v] {
			continue
		}
		sql := fmt.Sprintf("ALTER TYPE %s ADD VALUE '%s'", new.Name, v)
		steps = append(steps, database.PlanStep{
			Description: fmt.Sprintf("Add value %s to enum %s", v, new.Name),
			SQL:         sql,
		})
	}
	return steps
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
