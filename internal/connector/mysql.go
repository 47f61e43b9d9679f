package connector

import "github.com/schemadrift/schemadrift/datamodel"

var mysqlRegistry = newRegistry("mysql", []NativeType{
	{Name: "VarChar", MinArgs: 1, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Char", MinArgs: 1, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Text", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "TinyText", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "MediumText", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "LongText", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Int", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt}},
	{Name: "SmallInt", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt}},
	{Name: "BigInt", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBigInt}},
	{Name: "Decimal", MinArgs: 0, MaxArgs: 2, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDecimal}},
	{Name: "Float", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarFloat}},
	{Name: "Double", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarFloat}},
	{Name: "TinyInt", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBoolean, datamodel.ScalarInt}},
	{Name: "DateTime", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Timestamp", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Date", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Json", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarJson}},
	{Name: "Blob", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBytes}},
	{Name: "LongBlob", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBytes}},
})
