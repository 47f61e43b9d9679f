// Package typealias expands `type X = Base @dir1 @dir2` declarations by
// fixpoint iteration over the alias graph, so that later stages (the
// lowerer, the validator) see only scalar base types and a flattened
// directive list per field.
package typealias

import (
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/diagnostic"
)

// Resolved is one alias fully expanded to its scalar base plus the
// concatenated directive list (alias directives first, then any the use
// site itself adds).
type Resolved struct {
	Name  string
	Base  string
	Attrs []*ast.Attribute
}

// Resolve expands every TypeAliasDecl in doc against itself and the
// model/enum names also declared in doc. It returns a map from alias
// name to its resolved scalar base, plus any diagnostics encountered.
func Resolve(doc *ast.Document) (map[string]Resolved, []diagnostic.Diagnostic) {
	var diags []diagnostic.Diagnostic

	byName := make(map[string]*ast.TypeAliasDecl, len(doc.TypeAliases))
	for _, t := range doc.TypeAliases {
		byName[t.Name] = t
	}

	modelOrEnum := make(map[string]bool, len(doc.Models)+len(doc.Enums))
	for _, m := range doc.Models {
		modelOrEnum[m.Name] = true
	}
	for _, e := range doc.Enums {
		modelOrEnum[e.Name] = true
	}

	resolved := make(map[string]Resolved, len(doc.TypeAliases))
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(doc.TypeAliases))

	var path []string
	var resolve func(name string) (Resolved, bool)

	resolve = func(name string) (Resolved, bool) {
		if r, ok := resolved[name]; ok {
			return r, true
		}
		t := byName[name]
		if t == nil {
			return Resolved{}, false
		}

		if state[name] == visiting {
			cyclePath := append(append([]string{}, path...), name)
			diags = append(diags, diagnostic.NewKindDiagnostic(
				diagnostic.RangeFromSpan("", t.NameSpan.Start, t.NameSpan.End),
				diagnostic.KindTypeNotFound,
				fmt.Sprintf("Recursive type definitions are not allowed. Recursive path was: %s.", strings.Join(cyclePath, " -> ")),
			))
			return Resolved{}, false
		}
		if state[name] == done {
			return resolved[name], true
		}

		state[name] = visiting
		path = append(path, name)
		defer func() { path = path[:len(path)-1] }()

		base := t.Base
		attrs := append([]*ast.Attribute{}, t.Attrs...)

		if baseAlias, isAlias := byName[base]; isAlias {
			_ = baseAlias
			br, ok := resolve(base)
			if !ok {
				state[name] = done
				return Resolved{}, false
			}
			merged := append(append([]*ast.Attribute{}, br.Attrs...), attrs...)
			r := Resolved{Name: name, Base: br.Base, Attrs: merged}
			resolved[name] = r
			state[name] = done
			return r, true
		}

		if modelOrEnum[base] {
			diags = append(diags, diagnostic.NewKindDiagnostic(
				diagnostic.RangeFromSpan("", t.BaseSpan.Start, t.BaseSpan.End),
				diagnostic.KindValidation,
				"Only scalar types can be used for defining custom types.",
			))
			state[name] = done
			return Resolved{}, false
		}

		if !isKnownScalar(base) {
			diags = append(diags, diagnostic.NewKindDiagnostic(
				diagnostic.RangeFromSpan("", t.BaseSpan.Start, t.BaseSpan.End),
				diagnostic.KindTypeNotFound,
				fmt.Sprintf("Type %q is neither a built-in type, nor refers to another model, custom type, or enum.", base),
			))
			state[name] = done
			return Resolved{}, false
		}

		r := Resolved{Name: name, Base: base, Attrs: attrs}
		resolved[name] = r
		state[name] = done
		return r, true
	}

	for _, t := range doc.TypeAliases {
		resolve(t.Name)
	}

	return resolved, diags
}

var knownScalars = map[string]bool{
	"String":   true,
	"Int":      true,
	"BigInt":   true,
	"Float":    true,
	"Decimal":  true,
	"Boolean":  true,
	"DateTime": true,
	"Json":     true,
	"Bytes":    true,
}

func isKnownScalar(name string) bool {
	return knownScalars[name]
}

// DuplicateAttributes finds directive names that occur both among the
// alias's own attrs and the field's own directly-declared attrs, per
// §4.C's "attribute appearing on both the alias and the use site" rule.
func DuplicateAttributes(aliasAttrs, fieldAttrs []*ast.Attribute) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	byName := make(map[string]*ast.Attribute, len(aliasAttrs))
	for _, a := range aliasAttrs {
		byName[a.Name] = a
	}
	for _, fa := range fieldAttrs {
		if aa, ok := byName[fa.Name]; ok {
			d := diagnostic.NewKindDiagnostic(
				diagnostic.RangeFromSpan("", fa.Span.Start, fa.Span.End),
				diagnostic.KindDuplicateAttribute,
				fmt.Sprintf("duplicate attribute %q", fa.Name),
			).WithDirective(fa.Name)
			d = d.WithRelated(diagnostic.Location{Range: diagnostic.RangeFromSpan("", aa.Span.Start, aa.Span.End)}, "also declared here")
			diags = append(diags, d)
		}
	}
	return diags
}
