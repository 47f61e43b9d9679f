package connector

import "github.com/schemadrift/schemadrift/datamodel"

var mssqlRegistry = newRegistry("sqlserver", []NativeType{
	{Name: "VarChar", MinArgs: 1, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "NVarChar", MinArgs: 1, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Char", MinArgs: 1, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarString}},
	{Name: "Int", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt}},
	{Name: "SmallInt", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarInt}},
	{Name: "BigInt", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBigInt}},
	{Name: "Decimal", MinArgs: 0, MaxArgs: 2, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDecimal}},
	{Name: "Float", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarFloat}},
	{Name: "Bit", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBoolean}},
	{Name: "DateTime2", MinArgs: 0, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "Date", MinArgs: 0, MaxArgs: 0, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarDateTime}},
	{Name: "VarBinary", MinArgs: 1, MaxArgs: 1, CompatibleWith: []datamodel.ScalarType{datamodel.ScalarBytes}},
})
