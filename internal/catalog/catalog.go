// Package catalog implements the introspector's lift direction
// (component G): turning a materialized database.Schema (F) back into a
// DML document, completing the G → F → DML-renderer → DML-text path of
// §2's data flow. Live catalog reads that build the database.Schema in
// the first place live on each dialect's *Introspector
// (database/postgres, database/mysql, ...); this package only does the
// schema-to-DML half.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/database"
)

// Lift reconstructs a DML ast.Document from a SQL schema, applying the
// lift rules of §4.G: column/index/default translation, foreign-key
// relation synthesis (1-1, 1-N, elided many-to-many, self-relation
// back-pointers), identity-link FK suppression, and stable field
// ordering.
func Lift(schema *database.Schema) (*ast.Document, error) {
	l := &lifter{schema: schema, tablesByName: make(map[string]database.Table)}
	for _, t := range schema.Tables {
		l.tablesByName[t.Name] = t
	}
	l.classifyJoinTables()

	doc := &ast.Document{}

	enumNames := make([]string, 0, len(schema.Enums))
	for _, e := range schema.Enums {
		enumNames = append(enumNames, e.Name)
	}
	sort.Strings(enumNames)
	enumsByName := make(map[string]database.Enum, len(schema.Enums))
	for _, e := range schema.Enums {
		enumsByName[e.Name] = e
	}
	for _, name := range enumNames {
		e := enumsByName[name]
		decl := &ast.EnumDecl{Name: e.Name}
		for _, v := range e.Values {
			decl.Values = append(decl.Values, &ast.EnumValue{Name: v})
		}
		doc.Enums = append(doc.Enums, decl)
	}

	tableNames := make([]string, 0, len(schema.Tables))
	for _, t := range schema.Tables {
		if l.joinTables[t.Name] {
			continue
		}
		tableNames = append(tableNames, t.Name)
	}
	sort.Strings(tableNames)

	for _, name := range tableNames {
		model, err := l.liftTable(l.tablesByName[name])
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		doc.Models = append(doc.Models, model)
	}

	l.synthesizeRelationFields(doc)
	sortModelFields(doc)

	return doc, nil
}

type lifter struct {
	schema       *database.Schema
	tablesByName map[string]database.Table
	joinTables   map[string]bool
}

// classifyJoinTables identifies tables matching the Prisma implicit
// many-to-many shape: name begins with `_`, exactly two columns `A`/`B`,
// exactly two foreign keys, a unique index on (A, B). Per rule 5, such a
// table is elided entirely; a non-conforming `_`-prefixed table is kept
// as an ordinary model.
func (l *lifter) classifyJoinTables() {
	l.joinTables = make(map[string]bool)
	for _, t := range l.schema.Tables {
		if isJoinTableShape(t) {
			l.joinTables[t.Name] = true
		}
	}
}

func isJoinTableShape(t database.Table) bool {
	if !strings.HasPrefix(t.Name, "_") {
		return false
	}
	if len(t.Columns) != 2 || len(t.ForeignKeys) != 2 {
		return false
	}
	names := map[string]bool{}
	for _, c := range t.Columns {
		names[c.Name] = true
	}
	if !names["A"] || !names["B"] {
		return false
	}
	for _, idx := range t.Indexes {
		if idx.Unique && sameColumnSet(idx.Columns, []string{"A", "B"}) {
			return true
		}
	}
	return false
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]string{}, a...), append([]string{}, b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// liftTable builds a model's scalar fields, PK/unique/index attributes,
// and default expressions. Relation fields are added in a second pass
// once every model exists (synthesizeRelationFields), since a relation
// may need to add a field to the *other* model in the pair.
func (l *lifter) liftTable(t database.Table) (*ast.ModelDecl, error) {
	model := &ast.ModelDecl{Name: t.Name}

	pkCols := primaryKeyColumns(t)
	identityFKColumns := l.identityFKColumns(t, pkCols)

	for _, c := range t.Columns {
		field, err := l.liftColumn(t, c, len(pkCols) == 1 && pkCols[0] == c.Name)
		if err != nil {
			return nil, err
		}
		if identityFKColumns[c.Name] {
			// Rule 6: the FK is suppressed; only the @id-bearing scalar
			// field survives, no relation field for this link.
		}
		model.Fields = append(model.Fields, field)
	}

	if len(pkCols) > 1 {
		model.BlockAttrs = append(model.BlockAttrs, blockAttr("id", arrayArg(pkCols)))
	}

	for _, idx := range t.Indexes {
		if len(idx.Columns) == 1 && idx.Unique {
			continue // single-column uniques are rendered as @unique on the field itself
		}
		name := "index"
		if idx.Unique {
			name = "unique"
		}
		args := []*ast.Arg{{Value: identArray(idx.Columns)}}
		if idx.Name != "" {
			args = append(args, &ast.Arg{Name: "name", Value: &ast.Value{Kind: ast.ValString, String: idx.Name}})
		}
		model.BlockAttrs = append(model.BlockAttrs, &ast.BlockAttribute{Name: name, Args: args})
	}

	return model, nil
}

// identityFKColumns returns the set of single-column FK endpoints that
// are also the table's sole primary key, per rule 6.
func (l *lifter) identityFKColumns(t database.Table, pkCols []string) map[string]bool {
	out := map[string]bool{}
	if len(pkCols) != 1 {
		return out
	}
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 1 && fk.Columns[0] == pkCols[0] {
			out[pkCols[0]] = true
		}
	}
	return out
}

func primaryKeyColumns(t database.Table) []string {
	var cols []string
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

func (l *lifter) liftColumn(t database.Table, c database.Column, singlePK bool) (*ast.FieldDecl, error) {
	field := &ast.FieldDecl{Name: c.Name, Arity: ast.Required}
	if c.Nullable {
		field.Arity = ast.Optional
	}

	typeName, native := columnDMLType(l.schema.Dialect, c)
	field.TypeName = typeName
	field.NativeTyp = native

	if singlePK {
		field.Attrs = append(field.Attrs, &ast.Attribute{Name: "id"})
	}
	if isSingleColumnUnique(t, c.Name) {
		field.Attrs = append(field.Attrs, &ast.Attribute{Name: "unique"})
	}

	if def := c.LogicalDefault(); def != "" {
		val := liftDefaultValue(def)
		field.Attrs = append(field.Attrs, &ast.Attribute{Name: "default", Args: []*ast.Arg{{Value: val}}})
	}

	return field, nil
}

func isSingleColumnUnique(t database.Table, column string) bool {
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == column {
			return true
		}
	}
	return false
}

// liftDefaultValue maps a raw SQL default expression back to a DML
// literal or function call per rule 4: quoted strings and numbers pass
// through, SQL booleans normalize to true/false, and the handful of
// generator expressions this pack's dialects emit (CURRENT_TIMESTAMP,
// GETDATE(), now()) normalize to the DML `now()` call. Anything else is
// preserved as a bare identifier so a round-trip render doesn't silently
// drop it.
func liftDefaultValue(raw string) *ast.Value {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	switch upper {
	case "TRUE", "1":
		return &ast.Value{Kind: ast.ValBool, Bool: true}
	case "FALSE", "0":
		return &ast.Value{Kind: ast.ValBool, Bool: false}
	case "CURRENT_TIMESTAMP", "CURRENT_TIMESTAMP(3)", "GETDATE()", "NOW()":
		return &ast.Value{Kind: ast.ValFunctionCall, String: "now"}
	}

	if len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'' {
		return &ast.Value{Kind: ast.ValString, String: strings.ReplaceAll(trimmed[1:len(trimmed)-1], "''", "'")}
	}
	if isNumericLiteral(trimmed) {
		return &ast.Value{Kind: ast.ValNumber, Number: trimmed}
	}
	return &ast.Value{Kind: ast.ValIdent, String: trimmed}
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r == '.' {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func blockAttr(name string, args ...*ast.Arg) *ast.BlockAttribute {
	return &ast.BlockAttribute{Name: name, Args: args}
}

func arrayArg(cols []string) *ast.Value {
	return identArray(cols)
}

func identArray(cols []string) *ast.Value {
	v := &ast.Value{Kind: ast.ValArray}
	for _, c := range cols {
		v.Elements = append(v.Elements, &ast.Value{Kind: ast.ValIdent, String: c})
	}
	return v
}

func sortModelFields(doc *ast.Document) {
	for _, m := range doc.Models {
		sort.SliceStable(m.Fields, func(i, j int) bool { return m.Fields[i].Name < m.Fields[j].Name })
	}
}
