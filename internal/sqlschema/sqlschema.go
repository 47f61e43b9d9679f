// Package sqlschema computes the desired SQL schema (component F) for a
// datamodel: the deterministic calculator spec.md describes as
// `datamodel ↔ F`. Its output is what internal/differ compares against
// an introspected database.Schema to produce a migration.
package sqlschema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/database"
	"github.com/schemadrift/schemadrift/datamodel"
)

// FromDatamodel computes the SQL schema a datamodel implies for dialect.
// Scalar fields become columns; relation fields become foreign keys on
// their owning side only (the base fields are already ordinary scalar
// columns); enum fields become dialect-appropriate column types; an
// implicit many-to-many relation synthesizes its `_AToB` join table.
func FromDatamodel(dm *datamodel.Datamodel, dialect database.Dialect) (*database.Schema, error) {
	schema := &database.Schema{Dialect: dialect}

	modelNames := make([]string, 0, len(dm.Models))
	for name := range dm.Models {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)

	for _, name := range modelNames {
		table, err := buildTable(dm.Models[name], dialect)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
		schema.Tables = append(schema.Tables, table)
	}

	for _, rel := range dm.Relations {
		if rel.IsManyToMany() {
			schema.Tables = append(schema.Tables, joinTable(rel, dialect))
		}
	}

	enumNames := make([]string, 0, len(dm.Enums))
	for name := range dm.Enums {
		enumNames = append(enumNames, name)
	}
	sort.Strings(enumNames)
	if dialect == database.DialectPostgres {
		for _, name := range enumNames {
			e := dm.Enums[name]
			schema.Enums = append(schema.Enums, database.Enum{Name: e.Name, Values: e.Values})
		}
	}
	if dialect == database.DialectMySQL {
		for ti := range schema.Tables {
			for ci, col := range schema.Tables[ti].Columns {
				if e, ok := dm.Enums[col.Type]; ok {
					quoted := make([]string, len(e.Values))
					for i, v := range e.Values {
						quoted[i] = "'" + v + "'"
					}
					schema.Tables[ti].Columns[ci].Type = "ENUM(" + strings.Join(quoted, ",") + ")"
				}
			}
		}
	}

	sort.Slice(schema.Tables, func(i, j int) bool { return schema.Tables[i].Name < schema.Tables[j].Name })
	return schema, nil
}

func buildTable(m *datamodel.Model, dialect database.Dialect) (database.Table, error) {
	table := database.Table{Name: mappedName(m.BlockAttrs, m.Name)}

	pkFields := compoundPrimaryKey(m.BlockAttrs)

	for _, f := range m.Fields {
		switch f.Kind {
		case datamodel.KindScalar:
			col, err := buildColumn(f, dialect)
			if err != nil {
				return table, err
			}
			if pkFields[f.Name] {
				col.IsPrimaryKey = true
			}
			table.Columns = append(table.Columns, col)

		case datamodel.KindEnum:
			col, err := buildEnumColumn(f, dialect)
			if err != nil {
				return table, err
			}
			table.Columns = append(table.Columns, col)

		case datamodel.KindRelation:
			if f.Relation == nil || f.Relation.IsManyToMany() {
				continue
			}
			if fk, ok := foreignKeyFor(m.Name, f); ok {
				table.ForeignKeys = append(table.ForeignKeys, fk)
			}
		}
	}

	table.Indexes = uniqueAndBlockIndexes(m)
	return table, nil
}

func buildColumn(f *datamodel.Field, dialect database.Dialect) (database.Column, error) {
	col := database.Column{
		Name:     mappedFieldName(f),
		Nullable: f.Arity == ast.Optional,
	}

	if f.NativeType != nil {
		col.Type = nativeTypeString(f.NativeType)
	} else {
		col.Type = scalarSQLType(dialect, f.Scalar)
	}

	for _, a := range f.Attrs {
		switch a.Name {
		case "id":
			col.IsPrimaryKey = true
		case "default":
			def, err := defaultExpr(a, dialect)
			if err != nil {
				return col, err
			}
			col.Default = def
		}
	}

	return col, nil
}

func buildEnumColumn(f *datamodel.Field, dialect database.Dialect) (database.Column, error) {
	col := database.Column{Name: mappedFieldName(f), Nullable: f.Arity == ast.Optional}

	switch dialect {
	case database.DialectPostgres:
		col.Type = f.EnumName
	case database.DialectMySQL:
		col.Type = f.EnumName // FromDatamodel replaces this with an inline ENUM('A','B',...) of the enum's members
	default:
		// SQLite and SQL Server have no native enum type; lower to a
		// bounded string. No CHECK constraint enforcing membership is
		// emitted, so the column accepts any string value.
		col.Type = "TEXT"
		if dialect == database.DialectMSSQL {
			col.Type = "NVARCHAR(100)"
		}
	}

	for _, a := range f.Attrs {
		if a.Name == "id" {
			col.IsPrimaryKey = true
		}
	}
	return col, nil
}

func foreignKeyFor(modelName string, f *datamodel.Field) (database.ForeignKey, bool) {
	rel := f.Relation
	var endpoint datamodel.RelationEndpoint
	var other datamodel.RelationEndpoint
	switch {
	case rel.A.Model == modelName && rel.A.Field == f.Name:
		endpoint, other = rel.A, rel.B
	case rel.B.Model == modelName && rel.B.Field == f.Name:
		endpoint, other = rel.B, rel.A
	default:
		return database.ForeignKey{}, false
	}
	if len(endpoint.BaseFields) == 0 {
		return database.ForeignKey{}, false
	}

	fk := database.ForeignKey{
		Name:              fmt.Sprintf("fk_%s_%s", strings.ToLower(modelName), strings.ToLower(f.Name)),
		Columns:           endpoint.BaseFields,
		ReferencedTable:   other.Model,
		ReferencedColumns: endpoint.RefFields,
	}
	if rel.OnDelete != "" && rel.OnDelete != datamodel.CascadeNone {
		onDelete := string(rel.OnDelete)
		fk.OnDelete = &onDelete
	}
	if rel.OnUpdate != "" && rel.OnUpdate != datamodel.CascadeNone {
		onUpdate := string(rel.OnUpdate)
		fk.OnUpdate = &onUpdate
	}
	return fk, true
}

// joinTable synthesizes the implicit many-to-many link table per spec.md
// §3 invariant 6: name begins with `_`, columns `A`/`B`, FKs to both
// sides, unique index on (A, B).
func joinTable(rel *datamodel.Relation, dialect database.Dialect) database.Table {
	name := "_" + rel.Name
	aType := scalarSQLType(dialect, datamodel.ScalarString)
	bType := aType

	return database.Table{
		Name: name,
		Columns: []database.Column{
			{Name: "A", Type: aType, Nullable: false},
			{Name: "B", Type: bType, Nullable: false},
		},
		ForeignKeys: []database.ForeignKey{
			{Name: "fk_" + strings.ToLower(name) + "_a", Columns: []string{"A"}, ReferencedTable: rel.A.Model, ReferencedColumns: []string{"id"}},
			{Name: "fk_" + strings.ToLower(name) + "_b", Columns: []string{"B"}, ReferencedTable: rel.B.Model, ReferencedColumns: []string{"id"}},
		},
		Indexes: []database.Index{
			{Name: strings.ToLower(name) + "_AB_unique", Columns: []string{"A", "B"}, Unique: true},
		},
	}
}

func uniqueAndBlockIndexes(m *datamodel.Model) []database.Index {
	var indexes []database.Index

	for _, f := range m.Fields {
		for _, a := range f.Attrs {
			if a.Name == "unique" {
				indexes = append(indexes, database.Index{
					Name:    fmt.Sprintf("%s_%s_key", strings.ToLower(m.Name), strings.ToLower(f.Name)),
					Columns: []string{mappedFieldName(f)},
					Unique:  true,
				})
			}
		}
	}

	for _, a := range m.BlockAttrs {
		switch a.Name {
		case "unique":
			cols, name := blockIndexFields(a)
			if name == "" {
				name = fmt.Sprintf("%s_%s_key", strings.ToLower(m.Name), strings.ToLower(strings.Join(cols, "_")))
			}
			indexes = append(indexes, database.Index{Name: name, Columns: cols, Unique: true})
		case "index":
			cols, name := blockIndexFields(a)
			if name == "" {
				name = fmt.Sprintf("%s_%s_idx", strings.ToLower(m.Name), strings.ToLower(strings.Join(cols, "_")))
			}
			indexes = append(indexes, database.Index{Name: name, Columns: cols, Unique: false})
		}
	}

	return indexes
}

func blockIndexFields(a *ast.BlockAttribute) (cols []string, name string) {
	for _, arg := range a.Args {
		if arg.Name == "" && arg.Value != nil && arg.Value.Kind == ast.ValArray {
			for _, v := range arg.Value.Elements {
				if v.Kind == ast.ValIdent {
					cols = append(cols, v.String)
				}
			}
		}
		if arg.Name == "name" && arg.Value != nil {
			name = arg.Value.String
		}
	}
	return cols, name
}

// compoundPrimaryKey returns the field-name set named by a model's
// `@@id([...])` block attribute, if any.
func compoundPrimaryKey(attrs []*ast.BlockAttribute) map[string]bool {
	out := make(map[string]bool)
	for _, a := range attrs {
		if a.Name != "id" {
			continue
		}
		cols, _ := blockIndexFields(a)
		for _, c := range cols {
			out[c] = true
		}
	}
	return out
}

func mappedName(attrs []*ast.BlockAttribute, fallback string) string {
	for _, a := range attrs {
		if a.Name == "map" {
			for _, arg := range a.Args {
				if arg.Value != nil && arg.Value.Kind == ast.ValString {
					return arg.Value.String
				}
			}
		}
	}
	return fallback
}

func mappedFieldName(f *datamodel.Field) string {
	for _, a := range f.Attrs {
		if a.Name == "map" {
			for _, arg := range a.Args {
				if arg.Value != nil && arg.Value.Kind == ast.ValString {
					return arg.Value.String
				}
			}
		}
	}
	return f.Name
}

func scalarSQLType(dialect database.Dialect, scalar datamodel.ScalarType) string {
	switch dialect {
	case database.DialectPostgres:
		return postgresScalarTypes[scalar]
	case database.DialectMySQL:
		return mysqlScalarTypes[scalar]
	case database.DialectSQLite:
		return sqliteScalarTypes[scalar]
	case database.DialectMSSQL:
		return mssqlScalarTypes[scalar]
	default:
		return "TEXT"
	}
}

var postgresScalarTypes = map[datamodel.ScalarType]string{
	datamodel.ScalarInt:      "INTEGER",
	datamodel.ScalarBigInt:   "BIGINT",
	datamodel.ScalarFloat:    "DOUBLE PRECISION",
	datamodel.ScalarDecimal:  "NUMERIC",
	datamodel.ScalarBoolean:  "BOOLEAN",
	datamodel.ScalarString:   "TEXT",
	datamodel.ScalarDateTime: "TIMESTAMP",
	datamodel.ScalarBytes:    "BYTEA",
	datamodel.ScalarJson:     "JSONB",
}

var mysqlScalarTypes = map[datamodel.ScalarType]string{
	datamodel.ScalarInt:      "INT",
	datamodel.ScalarBigInt:   "BIGINT",
	datamodel.ScalarFloat:    "DOUBLE",
	datamodel.ScalarDecimal:  "DECIMAL(65,30)",
	datamodel.ScalarBoolean:  "TINYINT(1)",
	datamodel.ScalarString:   "String", // mysql.Generator.FormatColumnDefinition widens bare "String" to VARCHAR(191)
	datamodel.ScalarDateTime: "DATETIME(3)",
	datamodel.ScalarBytes:    "LONGBLOB",
	datamodel.ScalarJson:     "JSON",
}

var sqliteScalarTypes = map[datamodel.ScalarType]string{
	datamodel.ScalarInt:      "INTEGER",
	datamodel.ScalarBigInt:   "INTEGER",
	datamodel.ScalarFloat:    "REAL",
	datamodel.ScalarDecimal:  "TEXT",
	datamodel.ScalarBoolean:  "INTEGER",
	datamodel.ScalarString:   "TEXT",
	datamodel.ScalarDateTime: "TEXT",
	datamodel.ScalarBytes:    "BLOB",
	datamodel.ScalarJson:     "TEXT",
}

var mssqlScalarTypes = map[datamodel.ScalarType]string{
	datamodel.ScalarInt:      "INT",
	datamodel.ScalarBigInt:   "BIGINT",
	datamodel.ScalarFloat:    "FLOAT",
	datamodel.ScalarDecimal:  "DECIMAL(38,10)",
	datamodel.ScalarBoolean:  "BIT",
	datamodel.ScalarString:   "String", // mssql.Generator.FormatColumnDefinition widens bare "String" to NVARCHAR(1000)
	datamodel.ScalarDateTime: "DATETIME2",
	datamodel.ScalarBytes:    "VARBINARY(MAX)",
	datamodel.ScalarJson:     "NVARCHAR(MAX)",
}

func nativeTypeString(nt *datamodel.ResolvedNativeType) string {
	if len(nt.Args) == 0 {
		return nt.Name
	}
	parts := make([]string, len(nt.Args))
	for i, v := range nt.Args {
		parts[i] = valueLiteral(v)
	}
	return fmt.Sprintf("%s(%s)", nt.Name, strings.Join(parts, ","))
}

func valueLiteral(v *ast.Value) string {
	switch v.Kind {
	case ast.ValNumber:
		return v.Number
	case ast.ValString, ast.ValIdent, ast.ValFunctionCall:
		return v.String
	default:
		return ""
	}
}

func defaultExpr(a *ast.Attribute, dialect database.Dialect) (*string, error) {
	if len(a.Args) == 0 {
		return nil, nil
	}
	v := a.Args[0].Value
	if v == nil {
		return nil, nil
	}

	switch v.Kind {
	case ast.ValString:
		s := "'" + strings.ReplaceAll(v.String, "'", "''") + "'"
		return &s, nil
	case ast.ValNumber:
		s := v.Number
		return &s, nil
	case ast.ValBool:
		s := boolLiteral(dialect, v.Bool)
		return &s, nil
	case ast.ValFunctionCall:
		return functionDefault(v.String, dialect), nil
	default:
		return nil, fmt.Errorf("unsupported default value kind %v", v.Kind)
	}
}

func boolLiteral(dialect database.Dialect, b bool) string {
	if dialect == database.DialectSQLite || dialect == database.DialectMSSQL {
		if b {
			return "1"
		}
		return "0"
	}
	return strconv.FormatBool(b)
}

// functionDefault maps a DML @default function call to its SQL
// equivalent. cuid()/uuid() are left without a SQL-level default: Prisma
// convention generates those client-side, and no dialect in this pack has
// a single portable expression for them; autoincrement() likewise has no
// default literal, and no generator renders an IDENTITY, AUTOINCREMENT or
// SERIAL marker for it either, so the column carries no default.
func functionDefault(name string, dialect database.Dialect) *string {
	var expr string
	switch name {
	case "now":
		switch dialect {
		case database.DialectPostgres, database.DialectSQLite:
			expr = "CURRENT_TIMESTAMP"
		case database.DialectMySQL:
			expr = "CURRENT_TIMESTAMP(3)"
		case database.DialectMSSQL:
			expr = "GETDATE()"
		}
	case "cuid", "uuid", "autoincrement":
		return nil
	}
	if expr == "" {
		return nil
	}
	return &expr
}
