package connector

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/schemadrift/schemadrift/ast"
)

// Overrides holds host-supplied connection-string values, loaded from a
// TOML file shaped like the teacher's lockplane.toml, that env(...)
// calls in a datasource block resolve against before falling back to
// the process environment. This is connector-resolution config, not
// CLI config: a caller driving Lift/Lower/Render against a live
// database needs a real DSN out of a `url = env("DATABASE_URL")`
// assignment without requiring the variable to actually be exported.
type Overrides struct {
	Env map[string]string `toml:"env"`
}

// LoadOverrides reads path as TOML into an Overrides value. A missing
// file is not an error; callers get a zero-value Overrides and env(...)
// resolution falls through to the process environment.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overrides{}, nil
		}
		return nil, err
	}

	var overrides Overrides
	if err := toml.Unmarshal(data, &overrides); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &overrides, nil
}

// ResolveURL evaluates a datasource's "url" assignment: a string
// literal is returned as-is, an env(NAME) call is resolved against
// overrides first and the process environment second.
func ResolveURL(ds *ast.DatasourceDecl, overrides *Overrides) (string, error) {
	var urlAssign *ast.Assignment
	for _, a := range ds.Assigns {
		if a.Key == "url" {
			urlAssign = a
			break
		}
	}
	if urlAssign == nil {
		return "", fmt.Errorf("datasource %q has no url assignment", ds.Name)
	}

	switch urlAssign.Value.Kind {
	case ast.ValString:
		return urlAssign.Value.String, nil
	case ast.ValFunctionCall:
		if urlAssign.Value.String != "env" || len(urlAssign.Value.CallArgs) != 1 {
			return "", fmt.Errorf("datasource %q: unsupported url expression %q", ds.Name, urlAssign.Value.String)
		}
		name := urlAssign.Value.CallArgs[0].String
		if overrides != nil {
			if v, ok := overrides.Env[name]; ok {
				return v, nil
			}
		}
		if v, ok := os.LookupEnv(name); ok {
			return v, nil
		}
		return "", fmt.Errorf("datasource %q: environment variable %q is not set", ds.Name, name)
	default:
		return "", fmt.Errorf("datasource %q: unsupported url expression", ds.Name)
	}
}
