package tune

import (
	"fmt"
	"sort"
	"strings"
)

// Candidate is one point in optimization space: a total mapping from every
// registered optimization name to enabled/disabled, plus an assigned fitness
// once evaluated. Candidates are value-semantics with copy-on-change: With
// always returns a fresh map, never an alias of the parent's.
type Candidate struct {
	Enabled    map[string]bool `json:"enabled"`
	Fitness    *float64        `json:"fitness"`
	Generation int             `json:"generation"`
}

// NewBaselineCandidate returns the all-disabled candidate over the
// registry's full name set.
func NewBaselineCandidate(reg *Registry) Candidate {
	enabled := make(map[string]bool, reg.Len())
	for _, name := range reg.Names() {
		enabled[name] = false
	}
	return Candidate{Enabled: enabled}
}

// NewAllEnabledCandidate returns the candidate with every optimization on.
func NewAllEnabledCandidate(reg *Registry) Candidate {
	enabled := make(map[string]bool, reg.Len())
	for _, name := range reg.Names() {
		enabled[name] = true
	}
	return Candidate{Enabled: enabled}
}

// With derives a new candidate with the named optimization forced on.
// The receiver is left untouched; fitness does not carry over.
func (c Candidate) With(name string) Candidate {
	enabled := make(map[string]bool, len(c.Enabled))
	for k, v := range c.Enabled {
		enabled[k] = v
	}
	enabled[name] = true
	return Candidate{Enabled: enabled, Generation: c.Generation}
}

// Validate checks the key-set invariant: Enabled must cover exactly the
// registry's name set. Partial or over-full candidates are ErrConfiguration.
func (c Candidate) Validate(reg *Registry) error {
	if len(c.Enabled) != reg.Len() {
		return fmt.Errorf("%w: candidate covers %d optimizations, registry has %d", ErrConfiguration, len(c.Enabled), reg.Len())
	}
	for name := range c.Enabled {
		if _, ok := reg.Lookup(name); !ok {
			return fmt.Errorf("%w: candidate references unknown optimization %q", ErrConfiguration, name)
		}
	}
	return nil
}

// FeatureFlags returns the enabled optimization names in lexicographic
// order. The fixed order keeps external invocations and logs reproducible
// regardless of map iteration order.
func (c Candidate) FeatureFlags() []string {
	flags := make([]string, 0, len(c.Enabled))
	for name, on := range c.Enabled {
		if on {
			flags = append(flags, name)
		}
	}
	sort.Strings(flags)
	return flags
}

// BuildTags returns the comma-joined tag list for `go test -tags`.
// Empty when no optimization is enabled.
func (c Candidate) BuildTags() string {
	return strings.Join(c.FeatureFlags(), ",")
}

// ExpectedTotalGain sums the a-priori expected gains of the enabled
// optimizations. Purely an ordering heuristic for the combinatorial search.
func (c Candidate) ExpectedTotalGain(reg *Registry) float64 {
	total := 0.0
	for name, on := range c.Enabled {
		if !on {
			continue
		}
		if opt, ok := reg.Lookup(name); ok {
			total += opt.ExpectedGain
		}
	}
	return total
}

// SetFitness assigns the candidate's score.
func (c *Candidate) SetFitness(f float64) {
	c.Fitness = &f
}

// FitnessValue returns the assigned fitness, or ok=false if the candidate
// has not been scored yet.
func (c Candidate) FitnessValue() (float64, bool) {
	if c.Fitness == nil {
		return 0, false
	}
	return *c.Fitness, true
}

// Summary returns a short log string, e.g. "[single_key_alloc, fast_atoi]".
// The shared "opt_" prefix is stripped for readability.
func (c Candidate) Summary() string {
	flags := c.FeatureFlags()
	short := make([]string, 0, len(flags))
	for _, f := range flags {
		short = append(short, strings.TrimPrefix(f, "opt_"))
	}
	if len(short) == 0 {
		return "[baseline]"
	}
	return "[" + strings.Join(short, ", ") + "]"
}
