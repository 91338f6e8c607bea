package object

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrUndefined is returned when assigning to a name no enclosing scope defines.
var ErrUndefined = errors.New("not defined in any accessible scope")

// Environment is one lexical scope. Lookups walk outward through Outer and
// the first scope defining a name wins.
type Environment struct {
	Bindings map[string]Object
	Outer    *Environment
}

// NewEnclosedEnvironment creates a child scope of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

func NewEnvironment() *Environment {
	return &Environment{
		Bindings: make(map[string]Object),
	}
}

func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.Outer {
		if obj, ok := env.Bindings[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// Define binds name in this scope, shadowing any outer binding, and returns
// the value.
func (e *Environment) Define(name string, val Object) Object {
	e.Bindings[name] = val

	slog.Debug("binding value",
		slog.Any("type", val.Type()),
		slog.String("name", name))
	return val
}

// Assign rebinds name in the nearest scope that defines it.
func (e *Environment) Assign(name string, val Object) (Object, error) {
	for env := e; env != nil; env = env.Outer {
		if _, exists := env.Bindings[name]; exists {
			env.Bindings[name] = val
			slog.Debug("assigning bound value",
				slog.Any("type", val.Type()),
				slog.String("name", name))
			return val, nil
		}
	}
	return nil, fmt.Errorf("failed to assign to '%s': %w", name, ErrUndefined)
}

// Names lists the names visible from this scope, sorted.
func (e *Environment) Names() []string {
	seen := map[string]bool{}
	names := []string{}
	for env := e; env != nil; env = env.Outer {
		for name := range env.Bindings {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names
}
