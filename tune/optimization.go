package tune

// Risk classifies how likely an optimization is to change observable
// behavior, not how likely it is to help.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// validRisks maps accepted risk levels. Unexported to prevent mutation.
var validRisks = map[Risk]bool{
	RiskLow:    true,
	RiskMedium: true,
	RiskHigh:   true,
}

// IsValidRisk returns true if r is a recognized risk level.
func IsValidRisk(r Risk) bool { return validRisks[r] }

// Optimization is a static descriptor of one independently togglable
// code-level change. Its name doubles as a Go build tag, so it must not
// contain hyphens. ExpectedGain is an a-priori estimate used only for
// prioritization; it is never trusted as ground truth.
type Optimization struct {
	Name              string   `yaml:"name" json:"name"`
	Description       string   `yaml:"description" json:"description"`
	ExpectedGain      float64  `yaml:"expected_gain" json:"expected_gain"`
	Risk              Risk     `yaml:"risk" json:"risk"`
	Priority          int      `yaml:"priority" json:"priority"`
	AffectedLocations []string `yaml:"affected_locations" json:"affected_locations"`
}

// FeatureFlag returns the build tag that enables this optimization.
func (o Optimization) FeatureFlag() string { return o.Name }

// DefaultCatalog returns the built-in optimization catalog for the
// hot-path store service this harness was written against.
func DefaultCatalog() []Optimization {
	return []Optimization{
		{
			Name:              "opt_single_key_alloc",
			Description:       "Single allocation per key in the direct set path (eliminate double key copy)",
			ExpectedGain:      0.04,
			Risk:              RiskLow,
			Priority:          0,
			AffectedLocations: []string{"internal/store/commands.go"},
		},
		{
			Name:              "opt_static_responses",
			Description:       "Static OK/PONG response bytes instead of allocating each time",
			ExpectedGain:      0.015,
			Risk:              RiskLow,
			Priority:          1,
			AffectedLocations: []string{"internal/store/commands.go"},
		},
		{
			Name:              "opt_zero_copy_get",
			Description:       "Zero-copy GET response sharing the stored buffer instead of cloning",
			ExpectedGain:      0.025,
			Risk:              RiskMedium,
			Priority:          2,
			AffectedLocations: []string{"internal/store/commands.go", "internal/store/data.go"},
		},
		{
			Name:              "opt_fast_itoa",
			Description:       "Append-based integer encoding in wire responses (strconv.AppendInt)",
			ExpectedGain:      0.015,
			Risk:              RiskLow,
			Priority:          3,
			AffectedLocations: []string{"internal/conn/writer.go"},
		},
		{
			Name:              "opt_fxhash_routing",
			Description:       "Faster non-cryptographic hash for shard routing",
			ExpectedGain:      0.015,
			Risk:              RiskLow,
			Priority:          4,
			AffectedLocations: []string{"internal/shard/router.go"},
		},
		{
			Name:              "opt_fast_atoi",
			Description:       "Direct byte-slice integer parsing on the read path",
			ExpectedGain:      0.03,
			Risk:              RiskLow,
			Priority:          5,
			AffectedLocations: []string{"internal/conn/reader.go"},
		},
	}
}
