package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemadrift/schemadrift/ast"
)

// Render prints a lifted ast.Document as DML text: one enum block per
// enum, one model block per model, fields in the order Lift left them
// in (stable lexicographic, per rule 8). It only ever needs to round
// from a Lift() result, so it doesn't attempt to reproduce a
// datasource/generator block - introspection has no catalog record of
// those, only of the schema objects they provisioned.
func Render(doc *ast.Document) string {
	var sb strings.Builder

	for i, e := range doc.Enums {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderEnum(&sb, e)
	}

	for i, m := range doc.Models {
		if i > 0 || len(doc.Enums) > 0 {
			sb.WriteString("\n")
		}
		renderModel(&sb, m)
	}

	return sb.String()
}

func renderEnum(sb *strings.Builder, e *ast.EnumDecl) {
	fmt.Fprintf(sb, "enum %s {\n", e.Name)
	for _, v := range e.Values {
		fmt.Fprintf(sb, "  %s\n", v.Name)
	}
	sb.WriteString("}\n")
}

func renderModel(sb *strings.Builder, m *ast.ModelDecl) {
	fmt.Fprintf(sb, "model %s {\n", m.Name)
	for _, f := range m.Fields {
		renderField(sb, f)
	}
	for _, a := range m.BlockAttrs {
		fmt.Fprintf(sb, "  @@%s\n", renderBlockAttrBody(a))
	}
	sb.WriteString("}\n")
}

func renderField(sb *strings.Builder, f *ast.FieldDecl) {
	sb.WriteString("  ")
	sb.WriteString(f.Name)
	sb.WriteString(" ")
	sb.WriteString(f.TypeName)
	switch f.Arity {
	case ast.Optional:
		sb.WriteString("?")
	case ast.List:
		sb.WriteString("[]")
	}
	if f.NativeTyp != nil {
		fmt.Fprintf(sb, " @%s.%s", f.NativeTyp.Prefix, f.NativeTyp.Name)
	}
	for _, attr := range f.Attrs {
		sb.WriteString(" @")
		sb.WriteString(renderAttrBody(attr.Name, attr.Args))
	}
	sb.WriteString("\n")
}

func renderBlockAttrBody(a *ast.BlockAttribute) string {
	return renderAttrBody(a.Name, a.Args)
}

func renderAttrBody(name string, args []*ast.Arg) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		v := renderValue(arg.Value)
		if arg.Name != "" {
			parts[i] = arg.Name + ": " + v
		} else {
			parts[i] = v
		}
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

func renderValue(v *ast.Value) string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case ast.ValString:
		return strconv.Quote(v.String)
	case ast.ValNumber:
		return v.Number
	case ast.ValBool:
		return strconv.FormatBool(v.Bool)
	case ast.ValIdent:
		return v.String
	case ast.ValFunctionCall:
		args := make([]string, len(v.CallArgs))
		for i, a := range v.CallArgs {
			args[i] = renderValue(a)
		}
		return fmt.Sprintf("%s(%s)", v.String, strings.Join(args, ", "))
	case ast.ValArray:
		elems := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = renderValue(e)
		}
		return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
	default:
		return ""
	}
}
