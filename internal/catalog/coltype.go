package catalog

import (
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/database"
)

// columnDMLType reverses internal/sqlschema's scalar-type tables: given a
// dialect and a column's logical type, it returns the DML scalar name to
// emit, falling back to an `Unsupported` field with a `@db.*` native-type
// annotation carrying the raw type string when nothing matches. This is
// inherently lossy the way any introspection type map is: SQLite's
// untyped-affinity columns, in particular, can't distinguish Int from
// BigInt or Boolean, and this lift always prefers the narrowest scalar.
func columnDMLType(dialect database.Dialect, col database.Column) (string, *ast.NativeType) {
	logical := strings.ToUpper(strings.TrimSpace(col.LogicalType()))

	table := dialectReverseTypes(dialect)
	if name, ok := table[logical]; ok {
		return name, nil
	}

	return "Unsupported", &ast.NativeType{Prefix: "db", Name: col.Type}
}

func dialectReverseTypes(dialect database.Dialect) map[string]string {
	switch dialect {
	case database.DialectPostgres:
		return map[string]string{
			"INTEGER":          "Int",
			"BIGINT":           "BigInt",
			"DOUBLE PRECISION": "Float",
			"NUMERIC":          "Decimal",
			"BOOLEAN":          "Boolean",
			"TEXT":             "String",
			"TIMESTAMP":        "DateTime",
			"BYTEA":            "Bytes",
			"JSONB":            "Json",
		}
	case database.DialectMySQL:
		return map[string]string{
			"INT":           "Int",
			"BIGINT":        "BigInt",
			"DOUBLE":        "Float",
			"DECIMAL(65,30)": "Decimal",
			"TINYINT(1)":    "Boolean",
			"VARCHAR(191)":  "String",
			"STRING":        "String",
			"DATETIME(3)":   "DateTime",
			"LONGBLOB":      "Bytes",
			"JSON":          "Json",
		}
	case database.DialectSQLite:
		return map[string]string{
			"INTEGER": "Int",
			"REAL":    "Float",
			"TEXT":    "String",
			"BLOB":    "Bytes",
		}
	case database.DialectMSSQL:
		return map[string]string{
			"INT":            "Int",
			"BIGINT":         "BigInt",
			"FLOAT":          "Float",
			"DECIMAL(38,10)": "Decimal",
			"BIT":            "Boolean",
			"NVARCHAR(1000)": "String",
			"STRING":         "String",
			"DATETIME2":      "DateTime",
			"VARBINARY(MAX)": "Bytes",
			"NVARCHAR(MAX)":  "Json",
		}
	default:
		return map[string]string{}
	}
}
