// Package connector validates native-type annotations (`@db.VarChar(191)`)
// against the datasource they're declared for: the prefix must name a
// real datasource, the type name must be one that datasource's dialect
// recognizes, argument arity must match, and the scalar kind the field
// declares must be compatible with that native type.
//
// One file per dialect family mirrors the teacher's one-package-per-
// dialect layout in database/postgres, database/sqlite, etc.
package connector

import "github.com/schemadrift/schemadrift/datamodel"

// NativeType describes one recognized native-type name for a dialect.
type NativeType struct {
	Name          string
	MinArgs       int
	MaxArgs       int // -1 means unbounded
	CompatibleWith []datamodel.ScalarType
}

// Registry is a dialect's set of recognized native types, keyed by name.
type Registry struct {
	Provider string
	types    map[string]NativeType
}

func newRegistry(provider string, types []NativeType) *Registry {
	m := make(map[string]NativeType, len(types))
	for _, t := range types {
		m[t.Name] = t
	}
	return &Registry{Provider: provider, types: m}
}

// Lookup returns the NativeType for name, or false if this dialect
// doesn't recognize it.
func (r *Registry) Lookup(name string) (NativeType, bool) {
	nt, ok := r.types[name]
	return nt, ok
}

// CompatibleScalar reports whether scalar is an allowed base type for nt.
func (nt NativeType) CompatibleScalar(scalar datamodel.ScalarType) bool {
	for _, s := range nt.CompatibleWith {
		if s == scalar {
			return true
		}
	}
	return false
}

// ForProvider returns the registry for a datasource provider string
// ("postgresql", "mysql", "sqlite", "sqlserver"), or nil if unknown.
func ForProvider(provider string) *Registry {
	switch provider {
	case "postgresql", "postgres":
		return postgresRegistry
	case "mysql":
		return mysqlRegistry
	case "sqlite":
		return sqliteRegistry
	case "sqlserver", "mssql":
		return mssqlRegistry
	default:
		return nil
	}
}
