package sqlite

import (
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/database"
)

// Generator implements database.SQLGenerator for SQLite
type Generator struct{}

// NewGenerator creates a new SQLite SQL generator
func NewGenerator() *Generator {
	return &Generator{}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// CreateTable generates SQLite SQL to create a table. Columns and the
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

// DropTable generates SQLite SQL to drop a table
func (g *Generator) DropTable(table database.Table) (string, string) {
	// SQLite doesn't support CASCADE, but will fail if there are dependencies
	sql := fmt.Sprintf("DROP TABLE %s", quoteIdent(table.Name))
	description := fmt.Sprintf("Drop table %s", table.Name)
	return sql, description
}

// AddColumn generates SQLite SQL to add a column
func (g *Generator) AddColumn(tableName string, col database.Column) (string, string) {
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
		quoteIdent(tableName),
		g.FormatColumnDefinition(col))
	description := fmt.Sprintf("Add column %s to table %s", col.Name, tableName)
	return sql, description
}

// DropColumn generates SQLite SQL to drop a column
func (g *Generator) DropColumn(tableName string, col database.Column) (string, string) {
	// SQLite 3.35.0+ supports DROP COLUMN, but we'll use it directly
	sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quoteIdent(tableName), quoteIdent(col.Name))
	description := fmt.Sprintf("Drop column %s from table %s", col.Name, tableName)
	return sql, description
}

// ModifyColumn generates SQLite SQL to modify a column
// SQLite doesn't support ALTER COLUMN, so when the diff has changes this
// returns a single step whose SQL is a commented-out warning, and no steps
// otherwise. It does not recreate the table itself.
func (g *Generator) ModifyColumn(tableName string, diff database.ColumnDiff) []database.PlanStep {
	steps := []database.PlanStep{}

	// SQLite doesn't support ALTER COLUMN TYPE, SET NOT NULL, or SET DEFAULT
	// These would require table recreation:
	// 1. CREATE TABLE new_table (with new column definition)
	// 2. INSERT INTO new_table SELECT ... FROM old_table
	// 3. DROP TABLE old_table
	// 4. ALTER TABLE new_table RENAME TO old_table
	//
	// For now, we'll return a warning step indicating this limitation
	if len(diff.Changes) > 0 {
		description := fmt.Sprintf("SQLite limitation: Cannot modify column %s.%s (changes: %s). "+
			"Would require table recreation.", tableName, diff.ColumnName, strings.Join(diff.Changes, ", "))
		steps = append(steps, database.PlanStep{
			Description: description,
			SQL:         fmt.Sprintf("-- %s", description),
		})
	}

	return steps
}

// AddIndex generates SQLite SQL to add an index
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

// DropIndex generates SQLite SQL to drop an index
func (g *Generator) DropIndex(tableName string, idx database.Index) (string, string) {
	sql := fmt.Sprintf("DROP INDEX %s", quoteIdent(idx.Name))
	description := fmt.Sprintf("Drop index %s from table %s", idx.Name, tableName)
	return sql, description
}

// AddForeignKey generates SQLite SQL to add a foreign key
// Note: SQLite only supports foreign keys defined at table creation
func (g *Generator) AddForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	// SQLite doesn't support ALTER TABLE ADD FOREIGN KEY
	// Foreign keys must be defined at table creation
	description := fmt.Sprintf("SQLite limitation: Cannot add foreign key %s to existing table %s. "+
		"Foreign keys must be defined at table creation.", fk.Name, tableName)
	sql := fmt.Sprintf("-- %s", description)
	return sql, description
}

// DropForeignKey generates SQLite SQL to drop a foreign key
func (g *Generator) DropForeignKey(tableName string, fk database.ForeignKey) (string, string) {
	// SQLite doesn't support ALTER TABLE DROP CONSTRAINT
	description := fmt.Sprintf("SQLite limitation: Cannot drop foreign key %s from table %s. "+
		"Would require table recreation.", fk.Name, tableName)
	sql := fmt.Sprintf("-- %s", description)
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

// ParameterPlaceholder returns the SQLite parameter placeholder (?)
func (g *Generator) ParameterPlaceholder(position int) string {
	return "?"
}

// RedefineTable rebuilds tableName with newColumns using SQLite's
// recommended twelve-step procedure (condensed to what a migration needs):
// create the replacement under a temporary name, copy the rows that still
// have a home in the new column set, drop the original, then rename the
// replacement into place. This is how SQLite expresses a column type
// change, a primary key change, or any other edit its ALTER TABLE cannot
// perform in place.
func (g *Generator) RedefineTable(tableName string, newColumns []database.Column) []database.PlanStep {
	tempName := tableName + "__schemadrift_new"

	newTable := database.Table{Name: tempName, Columns: newColumns}
	createSQL, _ := g.CreateTable(newTable)

	colNames := make([]string, len(newColumns))
	for i, c := range newColumns {
		colNames[i] = c.Name
	}
	columnList := quoteColumns(colNames)

	copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		quoteIdent(tempName), columnList, columnList, quoteIdent(tableName))
	dropSQL := fmt.Sprintf("DROP TABLE %s", quoteIdent(tableName))
	renameSQL := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoteIdent(tempName), quoteIdent(tableName))

	return []database.PlanStep{
		{Description: fmt.Sprintf("Create replacement table for %s", tableName), SQL: createSQL},
		{Description: fmt.Sprintf("Copy rows from %s into replacement", tableName), SQL: copySQL},
		{Description: fmt.Sprintf("Drop original table %s", tableName), SQL: dropSQL},
		{Description: fmt.Sprintf("Rename replacement into %s", tableName), SQL: renameSQL},
	}
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
