// Package schemahash computes a deterministic digest of a database.Schema,
// used to detect drift between the schema a migration was generated
// against and the schema a migration is about to be applied to.
package schemahash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/schemadrift/schemadrift/database"
)

// Compute returns a deterministic hash of schema. Any change to a table,
// column, index, foreign key, enum, or sequence changes the hash; field
// order and slice order in the input never do.
func Compute(schema *database.Schema) (string, error) {
	if schema == nil {
		return hashOf(map[string]interface{}{"tables": []interface{}{}}), nil
	}

	canonical := canonicalize(schema)
	jsonBytes, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	return hashOf(jsonBytes), nil
}

func canonicalize(schema *database.Schema) map[string]interface{} {
	tables := make([]interface{}, 0, len(schema.Tables))

	sortedTables := make([]database.Table, len(schema.Tables))
	copy(sortedTables, schema.Tables)
	sort.Slice(sortedTables, func(i, j int) bool { return sortedTables[i].Name < sortedTables[j].Name })

	for _, table := range sortedTables {
		tableMap := map[string]interface{}{
			"name":    table.Name,
			"columns": canonicalizeColumns(table.Columns),
		}
		if len(table.Indexes) > 0 {
			tableMap["indexes"] = canonicalizeIndexes(table.Indexes)
		}
		if len(table.ForeignKeys) > 0 {
			tableMap["foreign_keys"] = canonicalizeForeignKeys(table.ForeignKeys)
		}
		tables = append(tables, tableMap)
	}

	out := map[string]interface{}{"tables": tables}
	if len(schema.Enums) > 0 {
		out["enums"] = canonicalizeEnums(schema.Enums)
	}
	if len(schema.Sequences) > 0 {
		out["sequences"] = canonicalizeSequences(schema.Sequences)
	}
	return out
}

func canonicalizeColumns(columns []database.Column) []interface{} {
	result := make([]interface{}, 0, len(columns))

	sorted := make([]database.Column, len(columns))
	copy(sorted, columns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, col := range sorted {
		colMap := map[string]interface{}{
			"name":           col.Name,
			"type":           col.LogicalType(),
			"nullable":       col.Nullable,
			"is_primary_key": col.IsPrimaryKey,
		}
		if d := col.LogicalDefault(); d != "" {
			colMap["default"] = d
		}
		result = append(result, colMap)
	}
	return result
}

func canonicalizeIndexes(indexes []database.Index) []interface{} {
	result := make([]interface{}, 0, len(indexes))

	sorted := make([]database.Index, len(indexes))
	copy(sorted, indexes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, idx := range sorted {
		result = append(result, map[string]interface{}{
			"name":    idx.Name,
			"columns": idx.Columns,
			"unique":  idx.Unique,
		})
	}
	return result
}

func canonicalizeForeignKeys(fks []database.ForeignKey) []interface{} {
	result := make([]interface{}, 0, len(fks))

	sorted := make([]database.ForeignKey, len(fks))
	copy(sorted, fks)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i].Columns) > 0 && len(sorted[j].Columns) > 0 {
			return sorted[i].Columns[0] < sorted[j].Columns[0]
		}
		return sorted[i].Name < sorted[j].Name
	})

	for _, fk := range sorted {
		fkMap := map[string]interface{}{
			"name":               fk.Name,
			"columns":            fk.Columns,
			"referenced_table":   fk.ReferencedTable,
			"referenced_columns": fk.ReferencedColumns,
		}
		if fk.OnDelete != nil {
			fkMap["on_delete"] = *fk.OnDelete
		}
		if fk.OnUpdate != nil {
			fkMap["on_update"] = *fk.OnUpdate
		}
		result = append(result, fkMap)
	}
	return result
}

func canonicalizeEnums(enums []database.Enum) []interface{} {
	result := make([]interface{}, 0, len(enums))

	sorted := make([]database.Enum, len(enums))
	copy(sorted, enums)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, e := range sorted {
		result = append(result, map[string]interface{}{"name": e.Name, "values": e.Values})
	}
	return result
}

func canonicalizeSequences(seqs []database.Sequence) []interface{} {
	result := make([]interface{}, 0, len(seqs))

	sorted := make([]database.Sequence, len(seqs))
	copy(sorted, seqs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, s := range sorted {
		result = append(result, map[string]interface{}{
			"name": s.Name, "start": s.Start, "increment": s.Increment,
		})
	}
	return result
}

func hashOf(data interface{}) string {
	var bytes []byte
	switch v := data.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		jsonBytes, _ := json.Marshal(v)
		bytes = jsonBytes
	}
	sum := sha256.Sum256(bytes)
	return hex.EncodeToString(sum[:])
}
