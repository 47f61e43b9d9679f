package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/schemadrift/schemadrift/database"
)

// Introspector implements database.Introspector for SQL Server.
type Introspector struct {
	Schema string
}

// NewIntrospector creates a new SQL Server introspector reading the
// "dbo" schema.
func NewIntrospector() *Introspector {
	return &Introspector{Schema: "dbo"}
}

// IntrospectSchema reads the entire SQL Server database schema.
func (i *Introspector) IntrospectSchema(ctx context.Context, db *sql.DB) (*database.Schema, error) {
	schema := &database.Schema{Dialect: database.DialectMSSQL, Tables: make([]database.Table, 0)}

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

// GetTables returns all base table names in the configured schema.
func (i *Introspector) GetTables(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`
	rows, err := db.QueryContext(ctx, query, i.Schema)
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

// GetColumns returns all columns for a given SQL Server table.
func (i *Introspector) GetColumns(ctx context.Context, db *sql.DB, tableName string) ([]database.Column, error) {
	query := `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			c.IS_NULLABLE,
			c.COLUMN_DEFAULT,
			COLUMNPROPERTY(OBJECT_ID(@p1 + '.' + @p2), c.COLUMN_NAME, 'IsIdentity') as is_identity,
			COALESCE((
				SELECT 1
				FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
					ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
				WHERE tc.TABLE_NAME = c.TABLE_NAME AND tc.TABLE_SCHEMA = c.TABLE_SCHEMA
					AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND kcu.COLUMN_NAME = c.COLUMN_NAME
			), 0) as is_primary_key
		FROM INFORMATION_SCHEMA.COLUMNS c
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`
	rows, err := db.QueryContext(ctx, query, i.Schema, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []database.Column
	for rows.Next() {
		var col database.Column
		var dataType, nullable string
		var defaultVal sql.NullString
		var isIdentity, isPK int

		if err := rows.Scan(&col.Name, &dataType, &nullable, &defaultVal, &isIdentity, &isPK); err != nil {
			return nil, err
		}

		col.Type = dataType
		col.TypeMetadata = &database.TypeMetadata{Logical: dataType, Raw: dataType, Dialect: database.DialectMSSQL}
		col.Nullable = nullable == "YES"
		col.IsPrimaryKey = isPK == 1

		if isIdentity == 0 && defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
			col.DefaultMetadata = &database.DefaultMetadata{Raw: v, Dialect: database.DialectMSSQL}
		}

		columns = append(columns, col)
	}

	return columns, nil
}

// GetIndexes returns all non-primary-key indexes for a given table.
func (i *Introspector) GetIndexes(ctx context.Context, db *sql.DB, tableName string) ([]database.Index, error) {
	query := `
		SELECT ind.name, ind.is_unique, col.name
		FROM sys.indexes ind
		JOIN sys.index_columns ic ON ind.object_id = ic.object_id AND ind.index_id = ic.index_id
		JOIN sys.columns col ON ic.object_id = col.object_id AND ic.column_id = col.column_id
		JOIN sys.tables t ON ind.object_id = t.object_id
		WHERE t.name = @p1 AND ind.is_primary_key = 0 AND ind.name IS NOT NULL
		ORDER BY ind.name, ic.key_ordinal
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
		var unique bool
		var column string
		if err := rows.Scan(&name, &unique, &column); err != nil {
			return nil, err
		}
		idx, ok := idxMap[name]
		if !ok {
			idx = &database.Index{Name: name, Unique: unique}
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

// GetForeignKeys returns all foreign keys for a given table.
func (i *Introspector) GetForeignKeys(ctx context.Context, db *sql.DB, tableName string) ([]database.ForeignKey, error) {
	query := `
		SELECT
			fk.name,
			pc.name as parent_column,
			rt.name as referenced_table,
			rc.name as referenced_column,
			fk.update_referential_action_desc,
			fk.delete_referential_action_desc
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
		JOIN sys.tables t ON fk.parent_object_id = t.object_id
		JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id AND fkc.parent_column_id = pc.column_id
		JOIN sys.tables rt ON fk.referenced_object_id = rt.object_id
		JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
		WHERE t.name = @p1
		ORDER BY fk.name, fkc.constraint_column_id
	`
	rows, err := db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	fkMap := make(map[string]*database.ForeignKey)
	var fkNames []string

	for rows.Next() {
		var name, parentCol, refTable, refCol, updateRule, deleteRule string
		if err := rows.Scan(&name, &parentCol, &refTable, &refCol, &updateRule, &deleteRule); err != nil {
			return nil, err
		}
		if _, exists := fkMap[name]; !exists {
			fk := &database.ForeignKey{Name: name, ReferencedTable: refTable}
			if updateRule != "NO_ACTION" {
				fk.OnUpdate = &updateRule
			}
			if deleteRule != "NO_ACTION" {
				fk.OnDelete = &deleteRule
			}
			fkMap[name] = fk
			fkNames = append(fkNames, name)
		}
		fkMap[name].Columns = append(fkMap[name].Columns, parentCol)
		fkMap[name].ReferencedColumns = append(fkMap[name].ReferencedColumns, refCol)
	}

	var foreignKeys []database.ForeignKey
	for _, name := range fkNames {
		foreignKeys = append(foreignKeys, *fkMap[name])
	}
	return foreignKeys, nil
}
