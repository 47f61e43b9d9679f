// Package datamodel holds the semantic, fully-resolved representation of
// a DML document: models, fields, and relations with directives
// attached and aliases inlined. It is produced by internal/lower and
// consumed by internal/validate and the datamodel-to-SQL calculator.
package datamodel

import "github.com/schemadrift/schemadrift/ast"

// Datamodel maps model name to Model. It is immutable once built: every
// pass that needs a changed view constructs a fresh Datamodel.
type Datamodel struct {
	Models map[string]*Model
	Enums  map[string]*Enum
	// Relations are attached to fields (see Field.Relation) but also kept
	// here, deduplicated by canonical name, for passes that want to walk
	// the relation graph directly (the differ's FK-dependency ordering,
	// the introspection lift's back-pointer synthesis check).
	Relations []*Relation
}

// Model is one `model` block, fully lowered.
type Model struct {
	Name       string
	Span       ast.Span
	Fields     []*Field
	BlockAttrs []*ast.BlockAttribute
}

// FieldKind discriminates what a Field's type resolves to.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindEnum
	KindRelation
)

// ScalarType is one of the DML's built-in scalar kinds, or Unsupported
// for an opaque native-type escape hatch.
type ScalarType string

const (
	ScalarInt         ScalarType = "Int"
	ScalarBigInt      ScalarType = "BigInt"
	ScalarFloat       ScalarType = "Float"
	ScalarDecimal     ScalarType = "Decimal"
	ScalarBoolean     ScalarType = "Boolean"
	ScalarString      ScalarType = "String"
	ScalarDateTime    ScalarType = "DateTime"
	ScalarBytes       ScalarType = "Bytes"
	ScalarJson        ScalarType = "Json"
	ScalarUnsupported ScalarType = "Unsupported"
)

// Field is one field of a Model after alias expansion and relation
// reification.
type Field struct {
	Name       string
	Span       ast.Span
	Arity      ast.Arity
	Kind       FieldKind
	Scalar     ScalarType
	Unsup      string // raw native-type literal, set iff Scalar == ScalarUnsupported
	EnumName   string // set iff Kind == KindEnum
	ModelName  string // set iff Kind == KindRelation: the related model's name
	NativeType *ResolvedNativeType
	Attrs      []*ast.Attribute

	// Relation is non-nil iff Kind == KindRelation; it points at the one
	// Relation entry (shared between both endpoint fields) that this
	// field is one side of.
	Relation *Relation
}

// ResolvedNativeType is a native-type annotation validated against its
// datasource's connector.
type ResolvedNativeType struct {
	Datasource string
	Name       string
	Args       []*ast.Value
}

// Enum is a `enum` block.
type Enum struct {
	Name   string
	Span   ast.Span
	Values []string
}

// CascadePolicy is a relation's delete/update action.
type CascadePolicy string

const (
	CascadeNone     CascadePolicy = "NONE"
	CascadeCascade  CascadePolicy = "CASCADE"
	CascadeSetNull  CascadePolicy = "SET_NULL"
	CascadeRestrict CascadePolicy = "RESTRICT"
)

// RelationEndpoint identifies one side of a Relation: a model, the field
// on that model carrying the relation, and (on the owning side) the
// base/referenced scalar field lists.
type RelationEndpoint struct {
	Model      string
	Field      string
	Arity      ast.Arity
	BaseFields []string // "fields" argument; empty on the non-owning side
	RefFields  []string // "references" argument; empty on the non-owning side
}

// Relation connects two model endpoints. A self-relation has A.Model ==
// B.Model and A.Field != B.Field.
type Relation struct {
	Name     string
	Span     ast.Span
	A        RelationEndpoint
	B        RelationEndpoint
	OnDelete CascadePolicy
	OnUpdate CascadePolicy

	// Owner is "A" or "B": which endpoint carries fields/references for a
	// 1-1 or 1-N relation. Empty for an implicit many-to-many (neither
	// side owns a column; both are lists with no FK columns on a model).
	Owner string
}

// IsManyToMany reports whether both endpoints are arity List, i.e. an
// implicit Prisma-style join table with no scalar owning side.
func (r *Relation) IsManyToMany() bool {
	return r.A.Arity == ast.List && r.B.Arity == ast.List
}
