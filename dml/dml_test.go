package dml

import (
	"strings"
	"testing"

	"github.com/schemadrift/schemadrift/ast"
	"github.com/schemadrift/schemadrift/datamodel"
)

func TestCompile_SimpleModel(t *testing.T) {
	src := `
datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

model User {
  id    Int    @id
  email String @unique
  name  String?
}
`
	res := Compile(src)
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics)
	}
	user := res.Datamodel.Models["User"]
	if user == nil {
		t.Fatal("expected model User")
	}
	if len(user.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(user.Fields))
	}
	if user.Fields[1].Scalar != datamodel.ScalarString {
		t.Errorf("expected email to be String, got %v", user.Fields[1].Scalar)
	}
	if user.Fields[2].Arity != ast.Optional {
		t.Errorf("expected name to be optional")
	}
}

func Test1NRelation(t *testing.T) {
	src := `
model User {
  id    Int    @id
  posts Post[]
}

model Post {
  id       Int  @id
  authorId Int
  author   User @relation(fields: [authorId], references: [id])
}
`
	res := Compile(src)
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics)
	}
	if len(res.Datamodel.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(res.Datamodel.Relations))
	}
	rel := res.Datamodel.Relations[0]
	if rel.Owner == "" {
		t.Fatalf("expected an owning side")
	}
}

func TestMissingFieldsArgument(t *testing.T) {
	src := `
model User {
  id    Int    @id
  posts Post[]
}

model Post {
  id     Int  @id
  author User
}
`
	res := Compile(src)
	if !res.HasErrors() {
		t.Fatal("expected a validation error for missing 'fields' argument")
	}
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "must specify the 'fields' argument") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected missing-fields-argument diagnostic, got: %+v", res.Diagnostics)
	}
}

func TestImplicitManyToMany(t *testing.T) {
	src := `
model Post {
  id   Int  @id
  tags Tag[]
}

model Tag {
  id    Int    @id
  posts Post[]
}
`
	res := Compile(src)
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics)
	}
	if len(res.Datamodel.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(res.Datamodel.Relations))
	}
	if !res.Datamodel.Relations[0].IsManyToMany() {
		t.Errorf("expected an implicit many-to-many relation")
	}
}

func TestTypeAliasCycle(t *testing.T) {
	src := `
type A = B
type B = A

model M {
  id Int @id
  f  A
}
`
	res := Compile(src)
	found := false
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "Recursive type definitions are not allowed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a recursive type-alias diagnostic, got: %+v", res.Diagnostics)
	}
}

func TestSelfRelationBackPointer(t *testing.T) {
	src := `
model Employee {
  id         Int       @id
  managerId  Int?
  manager    Employee? @relation(fields: [managerId], references: [id])
}
`
	res := Compile(src)
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics)
	}
	m := res.Datamodel.Models["Employee"]
	foundBackPointer := false
	for _, f := range m.Fields {
		if f.Kind == datamodel.KindRelation && f.Arity == ast.List {
			foundBackPointer = true
		}
	}
	if !foundBackPointer {
		t.Errorf("expected a synthesized back-pointer list field on the self-relation")
	}
}

func TestSyntaxErrorRecovery(t *testing.T) {
	src := `
model Broken {
  id Int @id
  this is not valid @@@

enum Status {
  ACTIVE
  INACTIVE
}
`
	res := Compile(src)
	if !res.HasErrors() {
		t.Fatal("expected a syntax error")
	}
	if res.Datamodel.Enums["Status"] == nil {
		t.Errorf("expected parser to recover and still parse the enum after the broken model")
	}
}
