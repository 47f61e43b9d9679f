// Package validate enforces the Relation invariants and other
// cross-field, cross-model invariants over a lowered datamodel.Datamodel,
// emitting diagnostic.Diagnostic values with spans.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/datamodel"
	"github.com/schemadrift/schemadrift/diagnostic"
)

// Validate checks dm against the invariants of §3/§4.E and returns every
// diagnostic found, in a stable (model, field) order.
func Validate(dm *datamodel.Datamodel) []diagnostic.Diagnostic {
	v := &validator{dm: dm}

	names := make([]string, 0, len(dm.Models))
	for n := range dm.Models {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		v.validateAttributeDuplication(dm.Models[name])
	}
	for _, rel := range dm.Relations {
		v.validateRelation(rel)
	}

	return v.diags
}

type validator struct {
	dm    *datamodel.Datamodel
	diags []diagnostic.Diagnostic
}

func (v *validator) errf(span ast.Span, kind diagnostic.Kind, directive string, format string, args ...any) {
	d := diagnostic.NewKindDiagnostic(diagnostic.RangeFromSpan("", span.Start, span.End), kind, fmt.Sprintf(format, args...))
	if directive != "" {
		d = d.WithDirective(directive)
	}
	v.diags = append(v.diags, d)
}

func (v *validator) validateAttributeDuplication(m *datamodel.Model) {
	for _, f := range m.Fields {
		seen := map[string]*ast.Attribute{}
		for _, a := range f.Attrs {
			if prev, ok := seen[a.Name]; ok {
				d := diagnostic.NewKindDiagnostic(
					diagnostic.RangeFromSpan("", a.Span.Start, a.Span.End),
					diagnostic.KindDuplicateAttribute,
					fmt.Sprintf("Attribute %q is defined twice.", a.Name),
				).WithDirective(a.Name)
				d = d.WithRelated(diagnostic.Location{Range: diagnostic.RangeFromSpan("", prev.Span.Start, prev.Span.End)}, "first defined here")
				v.diags = append(v.diags, d)
				continue
			}
			seen[a.Name] = a
		}
	}
}

// uniqueCriteria returns the field-name sets on model m that satisfy a
// unique criterion: each single @id/@unique field, plus each @@id/@@unique
// block's field list.
func (v *validator) uniqueCriteria(m *datamodel.Model) [][]string {
	var out [][]string
	for _, f := range m.Fields {
		for _, a := range f.Attrs {
			if a.Name == "id" || a.Name == "unique" {
				out = append(out, []string{f.Name})
			}
		}
	}
	for _, ba := range m.BlockAttrs {
		if ba.Name != "id" && ba.Name != "unique" {
			continue
		}
		if len(ba.Args) == 0 || ba.Args[0].Value == nil {
			continue
		}
		out = append(out, valueIdents(ba.Args[0].Value))
	}
	return out
}

func valueIdents(val *ast.Value) []string {
	var out []string
	for _, e := range val.Elements {
		out = append(out, e.String)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func (v *validator) fieldByName(m *datamodel.Model, name string) *datamodel.Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (v *validator) validateRelation(rel *datamodel.Relation) {
	if rel.IsManyToMany() {
		return
	}

	modelA := v.dm.Models[rel.A.Model]
	modelB := v.dm.Models[rel.B.Model]
	if modelA == nil || modelB == nil {
		return
	}

	oneToOne := rel.A.Arity != ast.List && rel.B.Arity != ast.List

	aHas := len(rel.A.BaseFields) > 0
	bHas := len(rel.B.BaseFields) > 0

	switch {
	case oneToOne:
		if !aHas && !bHas {
			v.errf(rel.Span, diagnostic.KindDirectiveValidation, "relation",
				"The relation field for model %q must specify the 'fields' and 'references' arguments.", rel.A.Model)
			v.errf(rel.Span, diagnostic.KindDirectiveValidation, "relation",
				"The relation field for model %q must specify the 'fields' and 'references' arguments.", rel.B.Model)
			return
		}
	default:
		// 1-N: the list side never owns fields/references; the singular
		// side always must.
		owningModel, owningHas := rel.A.Model, aHas
		if rel.A.Arity == ast.List {
			owningModel, owningHas = rel.B.Model, bHas
		}
		if !owningHas {
			v.errf(rel.Span, diagnostic.KindDirectiveValidation, "relation",
				"The relation field for model %q must specify the 'fields' argument.", owningModel)
			return
		}
	}

	v.validateEndpoint(modelA, modelB, rel.A, rel.Span)
	v.validateEndpoint(modelB, modelA, rel.B, rel.Span)
}

// validateEndpoint checks the owning side's fields/references against
// scalar-vs-relation misuse, unique-criteria, and type matching.
func (v *validator) validateEndpoint(owner, other *datamodel.Model, ep datamodel.RelationEndpoint, span ast.Span) {
	if len(ep.BaseFields) == 0 {
		return
	}

	for _, fname := range ep.BaseFields {
		f := v.fieldByName(owner, fname)
		if f == nil {
			continue
		}
		if f.Kind == datamodel.KindRelation {
			v.errf(span, diagnostic.KindDirectiveValidation, "relation",
				"The argument fields must refer only to scalar fields. %q is a relation field.", fname)
		}
	}
	for _, fname := range ep.RefFields {
		f := v.fieldByName(other, fname)
		if f == nil {
			v.errf(span, diagnostic.KindDirectiveValidation, "relation",
				"The argument references must refer only to existing fields. The following fields do not exist in this model: %s", fname)
			continue
		}
		if f.Kind == datamodel.KindRelation {
			v.errf(span, diagnostic.KindDirectiveValidation, "relation",
				"The argument references must refer only to scalar fields. %q is a relation field.", fname)
		}
	}

	if len(ep.BaseFields) != len(ep.RefFields) {
		return
	}

	criteria := v.uniqueCriteria(other)
	matched := false
	for _, c := range criteria {
		if sameSet(c, ep.RefFields) {
			matched = true
			break
		}
	}
	if !matched {
		v.errf(span, diagnostic.KindDirectiveValidation, "relation",
			"The argument references must refer to a unique criteria in the related model %q. but is referencing the following fields that are not a unique criteria: %s",
			other.Name, strings.Join(ep.RefFields, ", "))
	}

	for i := range ep.BaseFields {
		if i >= len(ep.RefFields) {
			break
		}
		bf := v.fieldByName(owner, ep.BaseFields[i])
		rf := v.fieldByName(other, ep.RefFields[i])
		if bf == nil || rf == nil {
			continue
		}
		if bf.Kind == datamodel.KindScalar && rf.Kind == datamodel.KindScalar && bf.Scalar != rf.Scalar {
			v.errf(span, diagnostic.KindDirectiveValidation, "relation",
				"The type of the field %q in the model %q is not matching the type of the referenced field %q in model %q.",
				bf.Name, owner.Name, rf.Name, other.Name)
		}
	}
}
