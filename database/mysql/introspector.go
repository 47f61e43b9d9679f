package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/database"
)

// Introspector implements database.Introspector for MySQL.
type Introspector struct{}

// NewIntrospector creates a new MySQL introspector.
func NewIntrospector() *Introspector {
	return &Introspector{}
}

// IntrospectSchema reads the entire MySQL database schema.
func (i *Introspector) IntrospectSchema(ctx context.Context, db *sql.DB) (*database.Schema, error) {
	schema := &database.Schema{Dialect: database.DialectMySQL, Tables: make([]database.Table, 0)}

	tables, err := i.GetTables(ctx, db)
	if err != nil {
		return nil, err
	}

	for _, tableName := range tables {
		table := database.Table{Name: tableName}

		columns, err := i.GetColumns(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		table.Columns = columns

		indexes, err := i.GetIndexes(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get indexes for table %s: %w", tableName, err)
		}
		table.Indexes = indexes

		fks, err := i.GetForeignKeys(ctx, db, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableName, err)
		}
		table.ForeignKeys = fks

		schema.Tables = append(schema.Tables, table)
	}

	return schema, nil
}

// GetTables returns all base table names in the current MySQL database.
func (i *Introspector) GetTables(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, nil
}

// GetColumns returns all columns for a given MySQL table.
func (i *Introspector) GetColumns(ctx context.Context, db *sql.DB, tableName string) ([]database.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			COALESCE((
				SELECT 1 FROM information_schema.key_column_usage kcu
				JOIN information_schema.table_constraints tc
					ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
				WHERE tc.table_name = c.table_name AND tc.table_schema = c.table_schema
					AND tc.constraint_type = 'PRIMARY KEY' AND kcu.column_name = c.column_name
				LIMIT 1
			), 0) as is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`
	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var columnType, dataType, nullable, extra string
		var defaultVal sql.NullString
		var isPK int

		if err := rows.Scan(&col.Name, &columnType, &dataType, &nullable, &defaultVal, &extra, &isPK); err != nil {
			return nil, err
		}

		col.Type = strings.TrimSpace(columnType)
		col.TypeMetadata = &database.TypeMetadata{
			Logical: strings.ToLower(dataType),
			Raw:     columnType,
			Dialect: database.DialectMySQL,
		}
		col.Nullable = nullable == "YES"
		col.IsPrimaryKey = isPK == 1

		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
			col.DefaultMetadata = &database.DefaultMetadata{Raw: v, Dialect: database.DialectMySQL}
		}

		columns = append(columns, col)
	}

	return columns, nil
}

// GetIndexes returns all indexes for a given MySQL table, excluding the
// implicit PRIMARY index.
func (i *Introspector) GetIndexes(ctx context.Context, db *sql.DB, tableName string) ([]database.Index, error) {
	query := `
		SELECT index_name, non_unique, column_name
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ? AND index_name != 'PRIMARY'
		ORDER BY index_name, seq_in_index
	`
	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	idxMap := make(map[string]*database.Index)
	var order []string
	for rows.Next() {
		var name string
		var nonUnique int
		var column string
		if err := rows.Scan(&name, &nonUnique, &column); err != nil {
			return nil, err
		}
		idx, ok := idxMap[name]
		if !ok {
			idx = &database.Index{Name: name, Unique: nonUnique == 0}
			idxMap[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, column)
	}

	var indexes []database.Index
	for _, name := range order {
		indexes = append(indexes, *idxMap[name])
	}
	return indexes, nil
}

// GetForeignKeys returns all foreign keys for a given MySQL table.
func (i *Introspector) GetForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]database.ForeignKey, error) {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = kcu.constraint_name AND rc.constraint_schema = kcu.table_schema
		WHERE kcu.table_schema = DATABASE() AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`
	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	fkMap := make(map[string]*database.ForeignKey)
	var fkNames []string

	for rows.Next() {
		var constraintName, columnName, refTable, refColumn, updateRule, deleteRule string
		if err := rows.Scan(&constraintName, &columnName, &refTable, &refColumn, &updateRule, &deleteRule); err != nil {
			return nil, err
		}
		if _, exists := fkMap[constraintName]; !exists {
			fk := &database.ForeignKey{Name: constraintName, ReferencedTable: refTable}
			if updateRule != "NO ACTION" {
				fk.OnUpdate = &updateRule
			}
			if deleteRule != "NO ACTION" {
				fk.OnDelete = &deleteRule
			}
			fkMap[constraintName] = fk
			fkNames = append(fkNames, constraintName)
		}
		fkMap[constraintName].Columns = append(fkMap[constraintName].Columns, columnName)
		fkMap[constraintName].ReferencedColumns = append(fkMap[constraintName].ReferencedColumns, refColumn)
	}

	var foreignKeys []database.ForeignKey
	for _, name := range fkNames {
		foreignKeys = append(foreignKeys, *fkMap[name])
	}
	return foreignKeys, nil
}
