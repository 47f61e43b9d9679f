// Package dmlparser turns DML source text into an *ast.Document,
// recovering from syntax errors within a declaration so that one bad
// block never hides diagnostics in the rest of the file.
package dmlparser

import (
	"fmt"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/diagnostic"
	"github.com/schemadrift/schemadrift/internal/lexer"
)

// Parser consumes a token stream and builds an ast.Document.
type Parser struct {
	src  string
	lex  *lexer.Lexer
	tok  lexer.Token
	next lexer.Token

	diags []diagnostic.Diagnostic
}

// Parse parses src into a Document. Syntax errors are returned alongside
// whatever partial tree could still be recovered; callers should inspect
// the returned diagnostics even on success, since recovery can paper over
// an incomplete declaration.
func Parse(src string) (*ast.Document, []diagnostic.Diagnostic) {
	p := &Parser{src: src, lex: lexer.New(src)}
	p.advance()
	p.advance()
	doc := p.parseDocument()
	return doc, p.diags
}

func (p *Parser) advance() {
	p.tok = p.next
	p.next = p.lex.Next()
}

func (p *Parser) errorf(span ast.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.diags = append(p.diags, diagnostic.NewKindDiagnostic(
		diagnostic.RangeFromSpan(p.src, span.Start, span.End),
		diagnostic.KindSyntax,
		msg,
	))
}

func (p *Parser) span(start int) ast.Span {
	return ast.Span{Start: start, End: p.tok.Start}
}

func (p *Parser) parseDocument() *ast.Document {
	doc := &ast.Document{Span: ast.Span{Start: 0, End: len(p.src)}}

	for p.tok.Kind != lexer.EOF {
		if p.tok.Kind != lexer.Keyword {
			p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End},
				"expected one of 'model', 'enum', 'type', 'datasource', 'generator', found %q", p.tok.Text)
			p.recoverToNextKeyword()
			continue
		}

		switch p.tok.Text {
		case "model":
			if m := p.parseModel(); m != nil {
				doc.Models = append(doc.Models, m)
			}
		case "enum":
			if e := p.parseEnum(); e != nil {
				doc.Enums = append(doc.Enums, e)
			}
		case "type":
			if t := p.parseTypeAlias(); t != nil {
				doc.TypeAliases = append(doc.TypeAliases, t)
			}
		case "datasource":
			if d := p.parseDatasource(); d != nil {
				doc.Datasources = append(doc.Datasources, d)
			}
		case "generator":
			if g := p.parseGenerator(); g != nil {
				doc.Generators = append(doc.Generators, g)
			}
		}
	}

	return doc
}

// recoverToNextKeyword skips tokens until the next top-level keyword (or EOF).
func (p *Parser) recoverToNextKeyword() {
	for p.tok.Kind != lexer.EOF && p.tok.Kind != lexer.Keyword {
		p.advance()
	}
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, bool) {
	if p.tok.Kind != k {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "expected %s, found %q", what, p.tok.Text)
		return p.tok, false
	}
	t := p.tok
	p.advance()
	return t, true
}

func (p *Parser) parseModel() *ast.ModelDecl {
	start := p.tok.Start
	p.advance() // 'model'

	nameTok, ok := p.expect(lexer.Ident, "model name")
	if !ok {
		p.recoverToNextKeyword()
		return nil
	}

	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.recoverToNextKeyword()
		return nil
	}

	m := &ast.ModelDecl{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
	}

	for p.tok.Kind != lexer.RBrace && p.tok.Kind != lexer.EOF && p.tok.Kind != lexer.Keyword {
		if p.tok.Kind == lexer.AtAt {
			if ba := p.parseBlockAttribute(); ba != nil {
				m.BlockAttrs = append(m.BlockAttrs, ba)
			}
			continue
		}
		if f := p.parseField(); f != nil {
			m.Fields = append(m.Fields, f)
		} else {
			p.advance()
		}
	}

	if p.tok.Kind == lexer.RBrace {
		p.advance()
	} else {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "unterminated model %q: expected '}'", m.Name)
	}

	m.Span = p.span(start)
	return m
}

func (p *Parser) parseEnum() *ast.EnumDecl {
	start := p.tok.Start
	p.advance() // 'enum'

	nameTok, ok := p.expect(lexer.Ident, "enum name")
	if !ok {
		p.recoverToNextKeyword()
		return nil
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.recoverToNextKeyword()
		return nil
	}

	e := &ast.EnumDecl{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
	}

	for p.tok.Kind == lexer.Ident {
		vstart := p.tok.Start
		v := &ast.EnumValue{Name: p.tok.Text}
		p.advance()
		for p.tok.Kind == lexer.At {
			if a := p.parseAttribute(); a != nil {
				v.Attrs = append(v.Attrs, a)
			}
		}
		v.Span = p.span(vstart)
		e.Values = append(e.Values, v)
	}

	if p.tok.Kind == lexer.RBrace {
		p.advance()
	} else {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "unterminated enum %q: expected '}'", e.Name)
	}

	e.Span = p.span(start)
	return e
}

func (p *Parser) parseTypeAlias() *ast.TypeAliasDecl {
	start := p.tok.Start
	p.advance() // 'type'

	nameTok, ok := p.expect(lexer.Ident, "type alias name")
	if !ok {
		p.recoverToNextKeyword()
		return nil
	}
	if _, ok := p.expect(lexer.Equals, "'='"); !ok {
		p.recoverToNextKeyword()
		return nil
	}

	baseTok, ok := p.expect(lexer.Ident, "base type name")
	if !ok {
		p.recoverToNextKeyword()
		return nil
	}

	t := &ast.TypeAliasDecl{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
		BaseSpan: ast.Span{Start: baseTok.Start, End: baseTok.End},
		Base:     baseTok.Text,
	}

	for p.tok.Kind == lexer.At {
		if a := p.parseAttribute(); a != nil {
			t.Attrs = append(t.Attrs, a)
		}
	}

	t.Span = p.span(start)
	return t
}

func (p *Parser) parseDatasource() *ast.DatasourceDecl {
	start := p.tok.Start
	p.advance() // 'datasource'

	nameTok, ok := p.expect(lexer.Ident, "datasource name")
	if !ok {
		p.recoverToNextKeyword()
		return nil
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.recoverToNextKeyword()
		return nil
	}

	d := &ast.DatasourceDecl{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
	}
	d.Assigns = p.parseAssignments()

	if p.tok.Kind == lexer.RBrace {
		p.advance()
	} else {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "unterminated datasource %q: expected '}'", d.Name)
	}

	d.Span = p.span(start)
	return d
}

func (p *Parser) parseGenerator() *ast.GeneratorDecl {
	start := p.tok.Start
	p.advance() // 'generator'

	nameTok, ok := p.expect(lexer.Ident, "generator name")
	if !ok {
		p.recoverToNextKeyword()
		return nil
	}
	if _, ok := p.expect(lexer.LBrace, "'{'"); !ok {
		p.recoverToNextKeyword()
		return nil
	}

	g := &ast.GeneratorDecl{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
	}
	g.Assigns = p.parseAssignments()

	if p.tok.Kind == lexer.RBrace {
		p.advance()
	} else {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "unterminated generator %q: expected '}'", g.Name)
	}

	g.Span = p.span(start)
	return g
}

func (p *Parser) parseAssignments() []*ast.Assignment {
	var out []*ast.Assignment
	for p.tok.Kind == lexer.Ident && p.next.Kind == lexer.Equals {
		start := p.tok.Start
		key := p.tok.Text
		p.advance() // ident
		p.advance() // '='
		val := p.parseValue()
		out = append(out, &ast.Assignment{Span: p.span(start), Key: key, Value: val})
	}
	return out
}

func (p *Parser) parseField() *ast.FieldDecl {
	if p.tok.Kind != lexer.Ident {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "expected field name, found %q", p.tok.Text)
		return nil
	}

	start := p.tok.Start
	nameTok := p.tok
	p.advance()

	f := &ast.FieldDecl{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
		Arity:    ast.Required,
	}

	p.parseFieldType(f)

	for p.tok.Kind == lexer.At {
		attr := p.parseAttribute()
		if attr == nil {
			continue
		}
		if nt := nativeTypeFromAttr(attr); nt != nil {
			f.NativeTyp = nt
			continue
		}
		f.Attrs = append(f.Attrs, attr)
	}

	f.Span = p.span(start)
	return f
}

// nativeTypeFromAttr recognizes a qualified attribute name (one containing a
// '.') as a native-type annotation rather than an ordinary directive.
func nativeTypeFromAttr(a *ast.Attribute) *ast.NativeType {
	dot := -1
	for i := 0; i < len(a.Name); i++ {
		if a.Name[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return nil
	}
	var args []*ast.Value
	for _, arg := range a.Args {
		args = append(args, arg.Value)
	}
	return &ast.NativeType{
		Span:   a.Span,
		Prefix: a.Name[:dot],
		Name:   a.Name[dot+1:],
		Args:   args,
	}
}

func (p *Parser) parseFieldType(f *ast.FieldDecl) {
	typeStart := p.tok.Start

	if p.tok.Kind == lexer.Ident && p.tok.Text == "Unsupported" {
		p.advance()
		if _, ok := p.expect(lexer.LParen, "'('"); ok {
			if p.tok.Kind == lexer.String {
				f.Unsup = p.tok.Text
				p.advance()
			}
			p.expect(lexer.RParen, "')'")
		}
		f.TypeName = "Unsupported"
		f.TypeSpan = ast.Span{Start: typeStart, End: p.tok.Start}
		return
	}

	if p.tok.Kind != lexer.Ident {
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "expected a type name, found %q", p.tok.Text)
		return
	}
	f.TypeName = p.tok.Text
	p.advance()

	switch p.tok.Kind {
	case lexer.Question:
		f.Arity = ast.Optional
		p.advance()
	case lexer.LBracket:
		p.advance()
		p.expect(lexer.RBracket, "']'")
		f.Arity = ast.List
	}

	f.TypeSpan = ast.Span{Start: typeStart, End: p.tok.Start}
}

func (p *Parser) parseAttribute() *ast.Attribute {
	start := p.tok.Start
	p.advance() // '@'

	nameTok, ok := p.expect(lexer.Ident, "attribute name")
	if !ok {
		return nil
	}
	name := nameTok.Text
	for p.tok.Kind == lexer.Dot {
		p.advance()
		part, ok := p.expect(lexer.Ident, "identifier after '.'")
		if !ok {
			break
		}
		name += "." + part.Text
	}

	a := &ast.Attribute{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     name,
	}

	if p.tok.Kind == lexer.LParen {
		a.Args = p.parseArgs()
	}

	a.Span = p.span(start)
	return a
}

func (p *Parser) parseBlockAttribute() *ast.BlockAttribute {
	start := p.tok.Start
	p.advance() // '@@'

	nameTok, ok := p.expect(lexer.Ident, "block attribute name")
	if !ok {
		return nil
	}

	ba := &ast.BlockAttribute{
		NameSpan: ast.Span{Start: nameTok.Start, End: nameTok.End},
		Name:     nameTok.Text,
	}

	if p.tok.Kind == lexer.LParen {
		ba.Args = p.parseArgs()
	}

	ba.Span = p.span(start)
	return ba
}

func (p *Parser) parseArgs() []*ast.Arg {
	p.advance() // '('
	var args []*ast.Arg

	for p.tok.Kind != lexer.RParen && p.tok.Kind != lexer.EOF {
		start := p.tok.Start
		arg := &ast.Arg{}

		if p.tok.Kind == lexer.Ident && p.next.Kind == lexer.Colon {
			arg.Name = p.tok.Text
			p.advance() // name
			p.advance() // ':'
		}

		arg.Value = p.parseValue()
		arg.Span = p.span(start)
		args = append(args, arg)

		if p.tok.Kind == lexer.Comma {
			p.advance()
		} else {
			break
		}
	}

	p.expect(lexer.RParen, "')'")
	return args
}

func (p *Parser) parseValue() *ast.Value {
	start := p.tok.Start

	switch p.tok.Kind {
	case lexer.String:
		v := &ast.Value{Kind: ast.ValString, String: p.tok.Text}
		p.advance()
		v.Span = p.span(start)
		return v
	case lexer.Number:
		v := &ast.Value{Kind: ast.ValNumber, Number: p.tok.Text}
		p.advance()
		v.Span = p.span(start)
		return v
	case lexer.True:
		p.advance()
		return &ast.Value{Kind: ast.ValBool, Bool: true, Span: p.span(start)}
	case lexer.False:
		p.advance()
		return &ast.Value{Kind: ast.ValBool, Bool: false, Span: p.span(start)}
	case lexer.LBracket:
		p.advance()
		v := &ast.Value{Kind: ast.ValArray}
		for p.tok.Kind != lexer.RBracket && p.tok.Kind != lexer.EOF {
			v.Elements = append(v.Elements, p.parseValue())
			if p.tok.Kind == lexer.Comma {
				p.advance()
			} else {
				break
			}
		}
		p.expect(lexer.RBracket, "']'")
		v.Span = p.span(start)
		return v
	case lexer.Ident:
		name := p.tok.Text
		p.advance()
		if p.tok.Kind == lexer.LParen {
			p.advance()
			v := &ast.Value{Kind: ast.ValFunctionCall, String: name}
			for p.tok.Kind != lexer.RParen && p.tok.Kind != lexer.EOF {
				v.CallArgs = append(v.CallArgs, p.parseValue())
				if p.tok.Kind == lexer.Comma {
					p.advance()
				} else {
					break
				}
			}
			p.expect(lexer.RParen, "')'")
			v.Span = p.span(start)
			return v
		}
		return &ast.Value{Kind: ast.ValIdent, String: name, Span: p.span(start)}
	default:
		p.errorf(ast.Span{Start: p.tok.Start, End: p.tok.End}, "expected a value, found %q", p.tok.Text)
		p.advance()
		return &ast.Value{Kind: ast.ValIdent, String: "", Span: p.span(start)}
	}
}
