package ast

// Document is the root of a parsed DML file: an unordered set of
// top-level declarations in source order.
type Document struct {
	Span        Span
	Datasources []*DatasourceDecl
	Generators  []*GeneratorDecl
	Models      []*ModelDecl
	Enums       []*EnumDecl
	TypeAliases []*TypeAliasDecl
}

// DatasourceDecl is `datasource <name> { provider = "..."; url = ... }`.
type DatasourceDecl struct {
	Span       Span
	NameSpan   Span
	Name       string
	Assigns    []*Assignment
}

// GeneratorDecl is `generator <name> { ... }`. The core doesn't interpret
// generator bodies; it keeps them only so a round-trip render reproduces
// them verbatim.
type GeneratorDecl struct {
	Span     Span
	NameSpan Span
	Name     string
	Assigns  []*Assignment
}

// Assignment is `key = value` inside a datasource/generator block.
type Assignment struct {
	Span  Span
	Key   string
	Value *Value
}

// ModelDecl is `model Name { field... @@blockAttr... }`.
type ModelDecl struct {
	Span       Span
	NameSpan   Span
	Name       string
	Fields     []*FieldDecl
	BlockAttrs []*BlockAttribute
}

// EnumDecl is `enum Name { VALUE1 VALUE2 }`.
type EnumDecl struct {
	Span     Span
	NameSpan Span
	Name     string
	Values   []*EnumValue
}

// EnumValue is one member of an enum declaration, optionally carrying a
// `@map("...")` attribute.
type EnumValue struct {
	Span  Span
	Name  string
	Attrs []*Attribute
}

// TypeAliasDecl is `type Name = Base @attr1 @attr2`.
type TypeAliasDecl struct {
	Span     Span
	NameSpan Span
	Name     string
	BaseSpan Span
	Base     string
	Attrs    []*Attribute
}

// Arity is the field cardinality: required, optional ("?"), or list ("[]").
type Arity int

const (
	Required Arity = iota
	Optional
	List
)

// FieldDecl is one field line inside a model block.
type FieldDecl struct {
	Span      Span
	NameSpan  Span
	Name      string
	TypeSpan  Span
	TypeName  string // scalar, enum, model, or alias name
	Unsup     string // non-empty iff TypeName == "Unsupported"
	Arity     Arity
	NativeTyp *NativeType // non-nil iff a `@db.Xxx(...)` attribute is present
	Attrs     []*Attribute
}

// NativeType is a qualified native-type annotation `<prefix>.<Name>(args)`.
type NativeType struct {
	Span   Span
	Prefix string
	Name   string
	Args   []*Value
}

// Attribute is a field-level `@name(args)` directive invocation.
type Attribute struct {
	Span     Span
	NameSpan Span
	Name     string // e.g. "id", "relation", "default", "db.VarChar"
	Args     []*Arg
}

// BlockAttribute is a model-level `@@name(args)` directive invocation.
type BlockAttribute struct {
	Span     Span
	NameSpan Span
	Name     string
	Args     []*Arg
}

// Arg is one positional or named argument inside an attribute's parens.
type Arg struct {
	Span  Span
	Name  string // empty for positional args
	Value *Value
}

// ValueKind discriminates the literal/expression forms an Arg/Value can take.
type ValueKind int

const (
	ValString ValueKind = iota
	ValNumber
	ValBool
	ValIdent
	ValArray
	ValFunctionCall
)

// Value is a literal, bare identifier, array literal, or function-call
// expression (e.g. `now()`, `autoincrement()`, `cuid()`).
type Value struct {
	Span     Span
	Kind     ValueKind
	String   string  // ValString, ValIdent, ValFunctionCall (function name)
	Number   string  // ValNumber, raw text preserved for round-trip
	Bool     bool    // ValBool
	Elements []*Value // ValArray
	CallArgs []*Value // ValFunctionCall
}
