// Package support holds the type-support allow-list the lowering gate
// consults before dispatching an operator. The backend advertises which
// semantic kinds its kernels handle; anything outside the list routes the
// containing expression to the fallback path.
package support

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/emberdb/ember/internal/sem"
)

// Predicate reports whether the native backend supports a semantic type.
type Predicate func(sem.Type) bool

// Default returns the predicate for the stock backend build: every
// numeric kind plus bool, string, date, and timestamp. Decimal support is
// bounded by sem.MaxPrecision via Type.Validate, not here.
func Default() Predicate {
	return NewRegistry(
		sem.Bool, sem.Byte, sem.Short, sem.Int, sem.Long,
		sem.Float, sem.Double, sem.Decimal,
		sem.String, sem.Date, sem.Timestamp,
	).Supports
}

// Registry is a per-kind allow-list. The zero value supports nothing.
type Registry struct {
	kinds map[sem.Kind]bool
}

// NewRegistry creates a registry supporting exactly the given kinds.
func NewRegistry(kinds ...sem.Kind) *Registry {
	r := &Registry{kinds: make(map[sem.Kind]bool, len(kinds))}
	for _, k := range kinds {
		r.kinds[k] = true
	}
	return r
}

// Supports reports whether the type's kind is in the allow-list.
func (r *Registry) Supports(t sem.Type) bool {
	return r.kinds[t.Kind]
}

// allowListFile is the YAML shape of a support config:
//
//	supported:
//	  - int
//	  - long
//	  - decimal
type allowListFile struct {
	Supported []string `yaml:"supported"`
}

// LoadYAML reads an allow-list config. Unknown kind names are an error;
// a config that silently ignored a typo would widen the fallback surface
// without anyone noticing.
func LoadYAML(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read support config: %w", err)
	}

	var file allowListFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse support config: %w", err)
	}
	if len(file.Supported) == 0 {
		return nil, fmt.Errorf("support config lists no supported kinds")
	}

	reg := &Registry{kinds: make(map[sem.Kind]bool, len(file.Supported))}
	for _, name := range file.Supported {
		k, ok := sem.KindFromName(name)
		if !ok {
			return nil, fmt.Errorf("support config: unknown kind %q", name)
		}
		reg.kinds[k] = true
	}
	return reg, nil
}
