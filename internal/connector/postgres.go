package connector

import "github.com/schemadrift/schemadrift/datamodel"

var postgresRegistry = newRegistry("postgresql", []NativeType{
	{Name: "VarChar", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Char", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Text", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Integer", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt}},
	{Name: "SmallInt", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt}},
	{Name: "BigInt", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBigInt}},
	{Name: "Decimal", MinArgs: 0, MaxArgs: 2, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDecimal}},
	{Name: "Numeric", MinArgs: 0, MaxArgs: 2, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDecimal}},
	{Name: "Real", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarFloat}},
	{Name: "DoublePrecision", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarFloat}},
	{Name: "Boolean", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBoolean}},
	{Name: "Timestamp", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Timestamptz", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Date", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Json", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarJson}},
	{Name: "JsonB", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarJson}},
	{Name: "ByteA", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBytes}},
	{Name: "Uuid", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
})
