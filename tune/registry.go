package tune

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the read-only catalog of known optimizations. It is built
// once at startup and never mutated afterwards.
type Registry struct {
	byName   map[string]Optimization
	ordered  []Optimization // ascending priority, name tiebreak
	allNames []string       // lexicographic
}

// NewRegistry validates and indexes a catalog. It returns ErrConfiguration
// for duplicate or empty names, hyphenated names (illegal as build tags),
// unrecognized risk levels, or negative priorities.
func NewRegistry(catalog []Optimization) (*Registry, error) {
	byName := make(map[string]Optimization, len(catalog))
	for _, opt := range catalog {
		if opt.Name == "" {
			return nil, fmt.Errorf("%w: optimization with empty name", ErrConfiguration)
		}
		if strings.Contains(opt.Name, "-") {
			return nil, fmt.Errorf("%w: optimization %q: name must be a valid build tag (no hyphens)", ErrConfiguration, opt.Name)
		}
		if _, dup := byName[opt.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate optimization name %q", ErrConfiguration, opt.Name)
		}
		if !IsValidRisk(opt.Risk) {
			return nil, fmt.Errorf("%w: optimization %q: unknown risk %q", ErrConfiguration, opt.Name, opt.Risk)
		}
		if opt.Priority < 0 {
			return nil, fmt.Errorf("%w: optimization %q: negative priority %d", ErrConfiguration, opt.Name, opt.Priority)
		}
		byName[opt.Name] = opt
	}

	ordered := make([]Optimization, len(catalog))
	copy(ordered, catalog)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].Name < ordered[j].Name
	})

	allNames := make([]string, 0, len(byName))
	for name := range byName {
		allNames = append(allNames, name)
	}
	sort.Strings(allNames)

	return &Registry{byName: byName, ordered: ordered, allNames: allNames}, nil
}

// DefaultRegistry builds a Registry from the built-in catalog. The built-in
// catalog is known valid, so a failure here is a programming error.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultCatalog())
	if err != nil {
		panic(err)
	}
	return reg
}

// All returns every optimization, sorted by name.
func (r *Registry) All() []Optimization {
	out := make([]Optimization, 0, len(r.allNames))
	for _, name := range r.allNames {
		out = append(out, r.byName[name])
	}
	return out
}

// ByPriority returns every optimization in test order: ascending priority,
// ties broken by name for determinism.
func (r *Registry) ByPriority() []Optimization {
	out := make([]Optimization, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the full name set in lexicographic order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.allNames))
	copy(out, r.allNames)
	return out
}

// Lookup returns the optimization with the given name.
func (r *Registry) Lookup(name string) (Optimization, bool) {
	opt, ok := r.byName[name]
	return opt, ok
}

// Len returns the number of registered optimizations.
func (r *Registry) Len() int { return len(r.byName) }
