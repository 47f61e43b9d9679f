// Package migrate renders the ordered steps produced by internal/differ
// into dialect-specific SQL, using a database.Driver for the operations
// every dialect supports and a handful of narrower interfaces
// (EnumGenerator, TableRedefiner) for operations only some dialects do.
package migrate

import (
	"fmt"

	pgquery "github.com/pganalyze/pg_query_go/v6"

	"github.com/schemadrift/schemadrift/database"
	"github.com/schemadrift/schemadrift/internal/differ"
)

// RenderedStep is one migration statement ready to be written to a
// migration.sql file, still tagged with the step Kind it came from so the
// caller can emit the `-- <Kind>` comment header.
type RenderedStep struct {
	Kind        differ.Kind
	Description string
	SQL         string
}

// EnumGenerator is implemented by dialects with a standalone named enum
// type (PostgreSQL's CREATE TYPE ... AS ENUM). Dialects without one
// (MySQL inlines ENUM(...) in the column definition; SQLite and SQL
// Server have neither) don't implement it, and CreateEnum/DropEnum/
// AlterEnum steps degrade to an explanatory comment for them.
type EnumGenerator interface {
	CreateEnum(enum database.Enum) (sql, description string)
	DropEnum(enum database.Enum) (sql, description string)
	AlterEnum(old, new database.Enum) []database.PlanStep
}

// TableRedefiner is implemented by dialects whose ALTER TABLE can't
// express every column change (SQLite, for type or primary-key changes).
// Dialects that can always express the change in place don't need it.
type TableRedefiner interface {
	RedefineTable(tableName string, newColumns []database.Column) []database.PlanStep
}

// Render converts steps into RenderedSteps using driver for the
// operations database.SQLGenerator covers, consulting before/after to
// look up full table and column definitions the differ.Step only names.
func Render(steps []differ.Step, before, after *database.Schema, driver database.Driver, dialect database.Dialect) ([]RenderedStep, error) {
	beforeTables := indexTables(before)
	afterTables := indexTables(after)

	var out []RenderedStep
	for _, step := range steps {
		rendered, err := renderStep(step, beforeTables, afterTables, driver, dialect)
		if err != nil {
			return nil, fmt.Errorf("rendering %s step for %q: %w", step.Kind, step.Table, err)
		}
		out = append(out, rendered...)
	}
	return out, nil
}

func indexTables(schema *database.Schema) map[string]database.Table {
	m := make(map[string]database.Table)
	if schema == nil {
		return m
	}
	for _, t := range schema.Tables {
		m[t.Name] = t
	}
	return m
}

func renderStep(step differ.Step, beforeTables, afterTables map[string]database.Table, driver database.Driver, dialect database.Dialect) ([]RenderedStep, error) {
	switch step.Kind {
	case differ.KindCreateTable:
		table, ok := afterTables[step.Table]
		if !ok {
			return nil, fmt.Errorf("no post-state definition for table %q", step.Table)
		}
		sql, desc := driver.CreateTable(table)
		step := RenderedStep{Kind: step.Kind, Description: desc, SQL: sql}
		if err := validatePostgres(dialect, sql); err != nil {
			return nil, err
		}
		return []RenderedStep{step}, nil

	case differ.KindDropTable:
		table := beforeTables[step.Table]
		table.Name = step.Table
		sql, desc := driver.DropTable(table)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.KindAlterTable:
		return renderAlterTable(step, driver)

	case differ.KindCreateIndex:
		sql, desc := driver.AddIndex(step.Table, step.Index)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.KindDropIndex:
		sql, desc := driver.DropIndex(step.Table, step.Index)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.KindAddForeignKey:
		sql, desc := driver.AddForeignKey(step.Table, step.ForeignKey)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.KindDropForeignKey:
		sql, desc := driver.DropForeignKey(step.Table, step.ForeignKey)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.KindCreateEnum:
		if eg, ok := driver.(EnumGenerator); ok {
			sql, desc := eg.CreateEnum(step.Enum)
			return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil
		}
		return unsupportedStep(step.Kind, fmt.Sprintf("enum %s", step.Enum.Name), dialect), nil

	case differ.KindDropEnum:
		if eg, ok := driver.(EnumGenerator); ok {
			sql, desc := eg.DropEnum(step.Enum)
			return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil
		}
		return unsupportedStep(step.Kind, fmt.Sprintf("enum %s", step.Enum.Name), dialect), nil

	case differ.KindAlterEnum:
		if eg, ok := driver.(EnumGenerator); ok {
			planSteps := eg.AlterEnum(step.OldEnum, step.Enum)
			rendered := make([]RenderedStep, 0, len(planSteps))
			for _, ps := range planSteps {
				rendered = append(rendered, RenderedStep{Kind: step.Kind, Description: ps.Description, SQL: ps.SQL})
			}
			return rendered, nil
		}
		return unsupportedStep(step.Kind, fmt.Sprintf("enum %s", step.Enum.Name), dialect), nil

	case differ.KindRedefineTable:
		if tr, ok := driver.(TableRedefiner); ok {
			planSteps := tr.RedefineTable(step.Table, step.NewColumns)
			rendered := make([]RenderedStep, 0, len(planSteps))
			for _, ps := range planSteps {
				rendered = append(rendered, RenderedStep{Kind: step.Kind, Description: ps.Description, SQL: ps.SQL})
			}
			return rendered, nil
		}
		return unsupportedStep(step.Kind, fmt.Sprintf("table %s", step.Table), dialect), nil

	case differ.KindRenameTable:
		sql := renameTableSQL(dialect, step.OldTableName, step.NewTableName)
		desc := fmt.Sprintf("Rename table %s to %s", step.OldTableName, step.NewTableName)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	default:
		return nil, fmt.Errorf("unrecognized step kind %q", step.Kind)
	}
}

func renderAlterTable(step differ.Step, driver database.Driver) ([]RenderedStep, error) {
	switch step.AlterOp {
	case differ.OpAddColumn:
		sql, desc := driver.AddColumn(step.Table, step.Column)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.OpDropColumn:
		sql, desc := driver.DropColumn(step.Table, step.OldColumn)
		return []RenderedStep{{Kind: step.Kind, Description: desc, SQL: sql}}, nil

	case differ.OpAlterColumn:
		columnDiff := database.ColumnDiff{
			ColumnName: step.Column.Name,
			Old:        step.OldColumn,
			New:        step.Column,
			Changes:    differ.ColumnChanges(step.OldColumn, step.Column),
		}
		planSteps := driver.ModifyColumn(step.Table, columnDiff)
		rendered := make([]RenderedStep, 0, len(planSteps))
		for _, ps := range planSteps {
			rendered = append(rendered, RenderedStep{Kind: step.Kind, Description: ps.Description, SQL: ps.SQL})
		}
		return rendered, nil

	default:
		return nil, fmt.Errorf("unrecognized alter-table op %q", step.AlterOp)
	}
}

func unsupportedStep(kind differ.Kind, what string, dialect database.Dialect) []RenderedStep {
	desc := fmt.Sprintf("%s does not support %s for %s; skipped", dialect, kind, what)
	return []RenderedStep{{Kind: kind, Description: desc, SQL: fmt.Sprintf("-- %s", desc)}}
}

func renameTableSQL(dialect database.Dialect, oldName, newName string) string {
	switch dialect {
	case database.DialectMSSQL:
		return fmt.Sprintf("EXEC sp_rename '%s', '%s'", oldName, newName)
	case database.DialectMySQL:
		return fmt.Sprintf("RENAME TABLE %s TO %s", oldName, newName)
	default:
		return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", oldName, newName)
	}
}

// validatePostgres parses generated PostgreSQL DDL with the real
// Postgres grammar before it's accepted into a migration, catching a
// malformed render (missing comma, unbalanced paren) at generation time
// instead of at apply time against a live database.
func validatePostgres(dialect database.Dialect, sql string) error {
	if dialect != database.DialectPostgres {
		return nil
	}
	if _, err := pgquery.Parse(sql); err != nil {
		return fmt.Errorf("generated SQL failed to parse: %w", err)
	}
	return nil
}
