// Package dml is the public entry point for the DML front end: it wires
// the parser (B), type-alias resolver (C), lowerer (D), and validator
// (E) into one Compile call.
package dml

import (
	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/datamodel"
	"github.com/schemadrift/schemadrift/diagnostic"
	"github.com/schemadrift/schemadrift/internal/dmlparser"
	"github.com/schemadrift/schemadrift/internal/lower"
	"github.com/schemadrift/schemadrift/internal/typealias"
	"github.com/schemadrift/schemadrift/internal/validate"
)

// Result is the outcome of compiling one DML document.
type Result struct {
	Document    *ast.Document
	Datamodel   *datamodel.Datamodel
	Diagnostics []diagnostic.Diagnostic
}

// HasErrors reports whether any diagnostic in the result is an error.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostic.SeverityError {
			return true
		}
	}
	return false
}

// Compile parses, resolves, lowers, and validates src, returning every
// diagnostic collected along the way in parse-then-lower-then-validate
// order (per the deterministic ordering guarantee of §5).
func Compile(src string) *Result {
	doc, parseDiags := dmlparser.Parse(src)
	res := &Result{Document: doc, Diagnostics: parseDiags}

	aliases, aliasDiags := typealias.Resolve(doc)
	res.Diagnostics = append(res.Diagnostics, aliasDiags...)

	dm, lowerDiags := lower.Lower(doc, aliases)
	res.Datamodel = dm
	res.Diagnostics = append(res.Diagnostics, lowerDiags...)

	if dm != nil {
		res.Diagnostics = append(res.Diagnostics, validate.Validate(dm)...)
	}

	return res
}
