// Package lower walks a parsed, alias-resolved AST and produces a
// datamodel.Datamodel: scalar/enum/relation field classification,
// directive attachment, canonical relation naming, self-relation
// back-pointer synthesis, and native-type resolution against the active
// datasource's connector.
package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/datamodel"
	"github.com/schemadrift/schemadrift/diagnostic"
	"github.com/schemadrift/schemadrift/internal/connector"
	"github.com/schemadrift/schemadrift/internal/typealias"
)

var knownScalars = map[string]datamodel.ScalarType{
	"String":   datamodel.ScalarString,
	"Int":      datamodel.ScalarInt,
	"BigInt":   datamodel.ScalarBigInt,
	"Float":    datamodel.ScalarFloat,
	"Decimal":  datamodel.ScalarDecimal,
	"Boolean":  datamodel.ScalarBoolean,
	"DateTime": datamodel.ScalarDateTime,
	"Json":     datamodel.ScalarJson,
	"Bytes":    datamodel.ScalarBytes,
}

// Lower builds a Datamodel from doc, given the alias table produced by
// internal/typealias.Resolve.
func Lower(doc *ast.Document, aliases map[string]typealias.Resolved) (*datamodel.Datamodel, []diagnostic.Diagnostic) {
	l := &lowerer{
		doc:       doc,
		aliases:   aliases,
		enumNames: map[string]bool{},
		modelIdx:  map[string]*ast.ModelDecl{},
	}

	for _, e := range doc.Enums {
		l.enumNames[e.Name] = true
	}
	for _, m := range doc.Models {
		l.modelIdx[m.Name] = m
	}
	l.registry = l.activeRegistry()
	if len(doc.Datasources) > 1 {
		for _, ds := range doc.Datasources[1:] {
			l.errf(ds.NameSpan, diagnostic.KindValidation,
				"Only a single datasource is supported; found an additional datasource %q.", ds.Name)
		}
	}

	dm := &datamodel.Datamodel{
		Models: map[string]*datamodel.Model{},
		Enums:  map[string]*datamodel.Enum{},
	}

	for _, e := range doc.Enums {
		var values []string
		for _, v := range e.Values {
			values = append(values, v.Name)
		}
		dm.Enums[e.Name] = &datamodel.Enum{Name: e.Name, Span: e.Span, Values: values}
	}

	for _, m := range doc.Models {
		dm.Models[m.Name] = l.lowerModel(m)
	}

	l.reifyRelations(dm)

	return dm, l.diags
}

type lowerer struct {
	doc       *ast.Document
	aliases   map[string]typealias.Resolved
	enumNames map[string]bool
	modelIdx  map[string]*ast.ModelDecl
	registry  *connector.Registry
	diags     []diagnostic.Diagnostic
}

// activeRegistry picks the connector registry for the first datasource
// block, mirroring the Prisma convention of a single active datasource.
func (l *lowerer) activeRegistry() *connector.Registry {
	if len(l.doc.Datasources) == 0 {
		return nil
	}
	provider := ""
	for _, a := range l.doc.Datasources[0].Assigns {
		if a.Key == "provider" && a.Value != nil {
			provider = a.Value.String
		}
	}
	return connector.ForProvider(provider)
}

func (l *lowerer) errf(span ast.Span, kind diagnostic.Kind, format string, args ...any) {
	l.diags = append(l.diags, diagnostic.NewKindDiagnostic(
		diagnostic.RangeFromSpan("", span.Start, span.End), kind, fmt.Sprintf(format, args...),
	))
}

func (l *lowerer) lowerModel(m *ast.ModelDecl) *datamodel.Model {
	out := &datamodel.Model{Name: m.Name, Span: m.Span, BlockAttrs: m.BlockAttrs}
	for _, f := range m.Fields {
		out.Fields = append(out.Fields, l.lowerField(f))
	}
	return out
}

func (l *lowerer) lowerField(f *ast.FieldDecl) *datamodel.Field {
	out := &datamodel.Field{Name: f.Name, Span: f.Span, Arity: f.Arity, Attrs: f.Attrs}

	typeName := f.TypeName

	if alias, isAlias := l.aliases[typeName]; isAlias {
		out.Attrs = append(append([]*ast.Attribute{}, alias.Attrs...), f.Attrs...)
		l.diags = append(l.diags, typealias.DuplicateAttributes(alias.Attrs, f.Attrs)...)
		typeName = alias.Base
	}

	switch {
	case typeName == "Unsupported":
		out.Kind = datamodel.KindScalar
		out.Scalar = datamodel.ScalarUnsupported
		out.Unsup = f.Unsup
	case knownScalars[typeName] != "":
		out.Kind = datamodel.KindScalar
		out.Scalar = knownScalars[typeName]
	case l.enumNames[typeName]:
		out.Kind = datamodel.KindEnum
		out.EnumName = typeName
	case l.modelIdx[typeName] != nil:
		out.Kind = datamodel.KindRelation
		out.ModelName = typeName
	default:
		l.errf(f.TypeSpan, diagnostic.KindTypeNotFound,
			"Type %q is neither a built-in type, nor refers to another model, custom type, or enum.", typeName)
		out.Kind = datamodel.KindScalar
		out.Scalar = datamodel.ScalarString
	}

	if f.NativeTyp != nil {
		out.NativeType = l.resolveNativeType(f.NativeTyp, out.Scalar)
	}

	return out
}

func (l *lowerer) resolveNativeType(nt *ast.NativeType, scalar datamodel.ScalarType) *datamodel.ResolvedNativeType {
	var dsName string
	for _, d := range l.doc.Datasources {
		if d.Name == nt.Prefix {
			dsName = d.Name
			break
		}
	}
	if dsName == "" {
		names := make([]string, 0, len(l.doc.Datasources))
		for _, d := range l.doc.Datasources {
			names = append(names, d.Name)
		}
		example := "db"
		if len(names) > 0 {
			example = names[0]
		}
		l.errf(nt.Span, diagnostic.KindConnector,
			"The prefix %s is invalid. It must be equal to the name of an existing datasource e.g. %s.", nt.Prefix, example)
		return &datamodel.ResolvedNativeType{Datasource: nt.Prefix, Name: nt.Name, Args: nt.Args}
	}

	if l.registry != nil {
		typ, ok := l.registry.Lookup(nt.Name)
		if !ok {
			l.errf(nt.Span, diagnostic.KindConnector, "Native type %s is not supported for %s connector.", nt.Name, l.registry.Provider)
		} else {
			if len(nt.Args) < typ.MinArgs || (typ.MaxArgs >= 0 && len(nt.Args) > typ.MaxArgs) {
				l.errf(nt.Span, diagnostic.KindConnector, "Native type %s takes a different number of arguments.", nt.Name)
			}
			if !typ.CompatibleScalar(scalar) {
				l.errf(nt.Span, diagnostic.KindConnector, "Native type %s is not compatible with declared field type.", nt.Name)
			}
		}
	}

	return &datamodel.ResolvedNativeType{Datasource: dsName, Name: nt.Name, Args: nt.Args}
}

// relField groups a relation-typed Field with the model it lives on and
// its parsed @relation directive arguments, ahead of pairing endpoints.
type relField struct {
	model    string
	field    *datamodel.Field
	attr     *ast.Attribute // the @relation attribute, may be nil
	name     string
	fields   []string
	refs     []string
	onDelete datamodel.CascadePolicy
	onUpdate datamodel.CascadePolicy
}

func parseRelationAttr(f *datamodel.Field) (out relField) {
	for _, a := range f.Attrs {
		if a.Name != "relation" {
			continue
		}
		out.attr = a
		for i, arg := range a.Args {
			switch {
			case arg.Name == "name" || (arg.Name == "" && i == 0 && arg.Value.Kind == ast.ValString):
				if arg.Value.Kind == ast.ValString {
					out.name = arg.Value.String
				}
			case arg.Name == "fields":
				out.fields = valueIdents(arg.Value)
			case arg.Name == "references":
				out.refs = valueIdents(arg.Value)
			case arg.Name == "onDelete":
				out.onDelete = datamodel.CascadePolicy(strings.ToUpper(arg.Value.String))
			case arg.Name == "onUpdate":
				out.onUpdate = datamodel.CascadePolicy(strings.ToUpper(arg.Value.String))
			}
		}
	}
	return out
}

func valueIdents(v *ast.Value) []string {
	if v == nil {
		return nil
	}
	var out []string
	for _, e := range v.Elements {
		out = append(out, e.String)
	}
	return out
}

// reifyRelations pairs up relation-typed fields into datamodel.Relation
// entries per model pair, assigns canonical names, and synthesizes
// self-relation back-pointers.
func (l *lowerer) reifyRelations(dm *datamodel.Datamodel) {
	type pairKey struct{ a, b string }
	groups := map[pairKey][]relField{}

	modelNames := make([]string, 0, len(dm.Models))
	for name := range dm.Models {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)

	for _, mname := range modelNames {
		model := dm.Models[mname]
		for _, f := range model.Fields {
			if f.Kind != datamodel.KindRelation {
				continue
			}
			rf := parseRelationAttr(f)
			rf.model = mname
			rf.field = f
			a, b := mname, f.ModelName
			if a > b {
				a, b = b, a
			}
			groups[pairKey{a, b}] = append(groups[pairKey{a, b}], rf)
		}
	}

	keys := make([]pairKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	for _, k := range keys {
		fields := groups[k]
		l.reifyPair(dm, k.a, k.b, fields)
	}
}

// reifyPair matches up relField entries between models a and b into
// Relation values. Two relation fields on opposite models that share an
// explicit @relation name are paired; otherwise fields are paired in
// declaration order (the common one-relation-per-pair case).
func (l *lowerer) reifyPair(dm *datamodel.Datamodel, a, b string, fields []relField) {
	var onA, onB []relField
	for _, rf := range fields {
		if rf.model == a {
			onA = append(onA, rf)
		} else {
			onB = append(onB, rf)
		}
	}

	multiple := len(onA) > 1 || len(onB) > 1

	// Pair fields that name the same relation on both sides by that name.
	locked := map[int]bool{}
	for i := range onA {
		if onA[i].name == "" || i >= len(onB) {
			continue
		}
		for j := range onB {
			if !locked[j] && onB[j].name == onA[i].name {
				onB[i], onB[j] = onB[j], onB[i]
				locked[i] = true
				break
			}
		}
	}

	n := len(onA)
	if len(onB) > n {
		n = len(onB)
	}
	for i := 0; i < n; i++ {
		var ra, rb relField
		haveA, haveB := false, false
		if i < len(onA) {
			ra, haveA = onA[i], true
		}
		if i < len(onB) {
			rb, haveB = onB[i], true
		}

		name := ""
		switch {
		case haveA && ra.name != "":
			name = ra.name
		case haveB && rb.name != "":
			name = rb.name
		case a == b:
			fieldName := ""
			if haveA {
				fieldName = ra.field.Name
			}
			name = fmt.Sprintf("%s_%sTo%s", a, fieldName, b)
		case multiple:
			fieldName := ""
			if haveA {
				fieldName = ra.field.Name
			} else if haveB {
				fieldName = rb.field.Name
			}
			name = fmt.Sprintf("%s_%sTo%s", a, fieldName, b)
		default:
			name = fmt.Sprintf("%sTo%s", a, b)
		}

		rel := &datamodel.Relation{Name: name}
		if haveA {
			rel.A = datamodel.RelationEndpoint{
				Model: a, Field: ra.field.Name, Arity: ra.field.Arity,
				BaseFields: ra.fields, RefFields: ra.refs,
			}
			rel.Span = ra.field.Span
			if len(ra.fields) > 0 {
				rel.Owner = "A"
			}
			if ra.onDelete != "" {
				rel.OnDelete = ra.onDelete
			}
			if ra.onUpdate != "" {
				rel.OnUpdate = ra.onUpdate
			}
			ra.field.Relation = rel
		}
		if haveB {
			rel.B = datamodel.RelationEndpoint{
				Model: b, Field: rb.field.Name, Arity: rb.field.Arity,
				BaseFields: rb.fields, RefFields: rb.refs,
			}
			if rel.Span == (ast.Span{}) {
				rel.Span = rb.field.Span
			}
			if len(rb.fields) > 0 {
				rel.Owner = "B"
			}
			if rb.onDelete != "" {
				rel.OnDelete = rb.onDelete
			}
			if rb.onUpdate != "" {
				rel.OnUpdate = rb.onUpdate
			}
			rb.field.Relation = rel
		}
		if !haveA {
			rel.A = datamodel.RelationEndpoint{Model: a}
		}
		if !haveB {
			rel.B = datamodel.RelationEndpoint{Model: b}
		}

		dm.Relations = append(dm.Relations, rel)
	}

	if a == b {
		l.synthesizeSelfBackPointers(dm, a, onA)
	}
}

// synthesizeSelfBackPointers adds list fields named
// `<lowercased model>s_<field>` (e.g. `users_recruited_by`) back onto
// a self-referential model for every forward FK that doesn't already
// have a paired list-side field declared in the DML, per §4.D.
func (l *lowerer) synthesizeSelfBackPointers(dm *datamodel.Datamodel, model string, forward []relField) {
	m := dm.Models[model]
	declared := map[string]bool{}
	for _, f := range m.Fields {
		declared[f.Name] = true
	}

	for _, rf := range forward {
		if rf.field.Arity == ast.List {
			continue
		}
		backName := fmt.Sprintf("%ss_%s", strings.ToLower(model), rf.field.Name)
		if declared[backName] {
			continue
		}
		back := &datamodel.Field{
			Name:      backName,
			Arity:     ast.List,
			Kind:      datamodel.KindRelation,
			ModelName: model,
			Relation:  rf.field.Relation,
		}
		m.Fields = append(m.Fields, back)
		declared[backName] = true
	}
}
