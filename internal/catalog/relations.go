package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/database"
)

// synthesizeRelationFields adds relation-typed fields for every foreign
// key in the schema, per §4.G rule 5: 1-1/1-N pairs get a forward field
// on the owning side and a back-pointer on the target, elided
// many-to-many join tables contribute a plain list field on each
// endpoint instead, and self-referential FKs get both a forward field
// and a synthesized back-pointer list on the same model.
func (l *lifter) synthesizeRelationFields(doc *ast.Document) {
	modelsByName := make(map[string]*ast.ModelDecl, len(doc.Models))
	for _, m := range doc.Models {
		modelsByName[m.Name] = m
	}

	l.addManyToManyFields(modelsByName)

	type link struct {
		table string
		fk    database.ForeignKey
	}
	var links []link
	for _, t := range l.schema.Tables {
		if l.joinTables[t.Name] {
			continue
		}
		pkCols := primaryKeyColumns(t)
		suppressed := l.identityFKColumns(t, pkCols)
		for _, fk := range t.ForeignKeys {
			if len(fk.Columns) == 1 && suppressed[fk.Columns[0]] {
				continue // rule 6
			}
			links = append(links, link{table: t.Name, fk: fk})
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].table != links[j].table {
			return links[i].table < links[j].table
		}
		return links[i].fk.Name < links[j].fk.Name
	})

	// Disambiguation naming (rule: "Multiple FKs between the same pair of
	// models trigger the A_<field>ToB naming") needs to know, ahead of
	// time, whether a (child, parent) pair has more than one FK.
	pairCount := map[[2]string]int{}
	for _, lk := range links {
		key := [2]string{lk.table, lk.fk.ReferencedTable}
		pairCount[key]++
	}

	for _, lk := range links {
		child := modelsByName[lk.table]
		parent := modelsByName[lk.fk.ReferencedTable]
		if child == nil || parent == nil {
			continue // referenced table is an elided join table or missing; nothing to attach to
		}
		multi := pairCount[[2]string{lk.table, lk.fk.ReferencedTable}] > 1
		l.addOneSideRelation(child, parent, lk.fk, multi)
	}
}

func (l *lifter) addManyToManyFields(modelsByName map[string]*ast.ModelDecl) {
	var joinNames []string
	for name := range l.joinTables {
		joinNames = append(joinNames, name)
	}
	sort.Strings(joinNames)

	for _, name := range joinNames {
		t := l.tablesByName[name]
		var a, b string
		for _, fk := range t.ForeignKeys {
			switch {
			case len(fk.Columns) == 1 && fk.Columns[0] == "A":
				a = fk.ReferencedTable
			case len(fk.Columns) == 1 && fk.Columns[0] == "B":
				b = fk.ReferencedTable
			}
		}
		if a == "" || b == "" {
			continue
		}
		modelA, modelB := modelsByName[a], modelsByName[b]
		if modelA == nil || modelB == nil {
			continue
		}
		modelA.Fields = append(modelA.Fields, &ast.FieldDecl{
			Name: lowerFirst(b) + "s", TypeName: b, Arity: ast.List,
		})
		if a == b {
			continue // a self-referential M:N needs only one synthesized list field to avoid a duplicate name
		}
		modelB.Fields = append(modelB.Fields, &ast.FieldDecl{
			Name: lowerFirst(a) + "s", TypeName: a, Arity: ast.List,
		})
	}
}

// addOneSideRelation adds the forward (owning) field on child and the
// back-pointer field on parent for one foreign key. 1-1 vs 1-N is
// decided by whether the FK's own columns are also covered by a unique
// index on child: a uniquely-constrained FK can only ever reference one
// row per parent, so the back-pointer is optional-singular rather than a
// list.
func (l *lifter) addOneSideRelation(child, parent *ast.ModelDecl, fk database.ForeignKey, multi bool) {
	childTable := l.tablesByName[child.Name]
	oneToOne := isSingleColumnUnique(childTable, fk.Columns[0]) && len(fk.Columns) == 1

	forwardName := relationFieldName(fk.Columns, parent.Name, child)

	var relName string
	if multi {
		relName = fmt.Sprintf("%sTo%s_%s", child.Name, parent.Name, forwardName)
	}

	backName := lowerFirst(child.Name) + "s"
	if oneToOne {
		backName = lowerFirst(child.Name)
	}
	if multi {
		backName = fmt.Sprintf("%s_%s", backName, relName)
	}
	backName = uniqueFieldName(parent, backName)

	relationArgs := []*ast.Arg{
		{Name: "fields", Value: identArray(fk.Columns)},
		{Name: "references", Value: identArray(fk.ReferencedColumns)},
	}
	if multi {
		relationArgs = append([]*ast.Arg{{Value: &ast.Value{Kind: ast.ValString, String: relName}}}, relationArgs...)
	}
	if fk.OnDelete != nil && strings.ToUpper(*fk.OnDelete) == "CASCADE" {
		relationArgs = append(relationArgs, &ast.Arg{Name: "onDelete", Value: &ast.Value{Kind: ast.ValIdent, String: "Cascade"}})
	}

	forwardArity := ast.Required
	if anyColumnNullable(childTable, fk.Columns) {
		forwardArity = ast.Optional
	}
	child.Fields = append(child.Fields, &ast.FieldDecl{
		Name:  forwardName,
		Arity: forwardArity, TypeName: parent.Name,
		Attrs: []*ast.Attribute{{Name: "relation", Args: relationArgs}},
	})

	backArity := ast.List
	if oneToOne {
		backArity = ast.Optional
	}
	parent.Fields = append(parent.Fields, &ast.FieldDecl{Name: backName, TypeName: child.Name, Arity: backArity})
}

func anyColumnNullable(t database.Table, cols []string) bool {
	for _, name := range cols {
		for _, c := range t.Columns {
			if c.Name == name && c.Nullable {
				return true
			}
		}
	}
	return false
}

// relationFieldName derives the forward relation field's name from its
// FK column (stripping a conventional "_id"/"Id"/"ID" suffix: user_id
// and authorId both become user/author, recruited_by and direct_report
// are kept as-is since they carry no such suffix), de-duplicated
// against sibling field names already on child. A compound FK has no
// single column to name the field after, so it falls back to the
// target model's name.
func relationFieldName(fkColumns []string, targetModel string, child *ast.ModelDecl) string {
	candidate := lowerFirst(targetModel)
	if len(fkColumns) == 1 {
		candidate = stripIDSuffix(fkColumns[0])
	}
	return uniqueFieldName(child, candidate)
}

func stripIDSuffix(col string) string {
	for _, suffix := range []string{"_id", "Id", "ID"} {
		if strings.HasSuffix(col, suffix) && len(col) > len(suffix) {
			return col[:len(col)-len(suffix)]
		}
	}
	return col
}

func uniqueFieldName(model *ast.ModelDecl, base string) string {
	existing := map[string]bool{}
	for _, f := range model.Fields {
		existing[f.Name] = true
	}
	name := base
	for i := 2; existing[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
