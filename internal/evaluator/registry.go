package evaluator

import (
	"log/slog"
	"maps"
	"monkey/internal/object"
	"slices"
)

// Registry is the fixed table of builtins an evaluator resolves names
// against. It is built once and never changes, so one Registry can back any
// number of evaluators.
type Registry struct {
	builtins map[string]*object.Builtin
}

// NewRegistry returns the core builtins plus any extension tables. An
// extension cannot replace a core builtin.
func NewRegistry(extensions ...map[string]*object.Builtin) *Registry {
	r := &Registry{builtins: maps.Clone(builtins)}

	for _, ext := range extensions {
		for name, fn := range ext {
			if _, exists := r.builtins[name]; exists {
				slog.Warn("extension builtin ignored, name already registered",
					slog.String("name", name))
				continue
			}
			r.builtins[name] = fn
		}
	}

	slog.Debug("builtin registry built", slog.Int("builtins", len(r.builtins)))
	return r
}

func (r *Registry) Lookup(name string) (*object.Builtin, bool) {
	fn, ok := r.builtins[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builtins))
}
