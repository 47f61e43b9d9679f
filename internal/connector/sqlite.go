package connector

import "github.com/schemadrift/schemadrift/datamodel"

var sqliteRegistry = newRegistry("sqlite", []NativeType{
	{Name: "Text", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Integer", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt, datamodel.ScalarBigInt, datamodel.ScalarBoolean}},
	{Name: "Real", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarFloat}},
	{Name: "Blob", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBytes}},
	{Name: "DateTime", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
})
