package tune

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	catalog := make([]Optimization, 0, len(names))
	for i, name := range names {
		catalog = append(catalog, Optimization{Name: name, Risk: RiskLow, Priority: i})
	}
	reg, err := NewRegistry(catalog)
	require.NoError(t, err)
	return reg
}

func TestNewBaselineCandidate_CoversFullNameSet(t *testing.T) {
	// GIVEN a registry of three optimizations
	reg := testRegistry(t, "opt_a", "opt_b", "opt_c")

	// WHEN the baseline candidate is built
	cand := NewBaselineCandidate(reg)

	// THEN every name is present and disabled, and the candidate validates
	assert.Len(t, cand.Enabled, 3)
	for name, on := range cand.Enabled {
		assert.False(t, on, "baseline must disable %s", name)
	}
	assert.NoError(t, cand.Validate(reg))
	assert.Nil(t, cand.Fitness)
}

func TestCandidate_With_CopiesRatherThanAliases(t *testing.T) {
	// GIVEN a baseline candidate
	reg := testRegistry(t, "opt_a", "opt_b")
	parent := NewBaselineCandidate(reg)

	// WHEN a derived candidate enables opt_a
	child := parent.With("opt_a")

	// THEN the parent's map is untouched
	assert.False(t, parent.Enabled["opt_a"], "With must not alias the parent map")
	assert.True(t, child.Enabled["opt_a"])
	assert.NoError(t, child.Validate(reg))
}

func TestCandidate_Validate_PartialCandidateRejected(t *testing.T) {
	reg := testRegistry(t, "opt_a", "opt_b")

	partial := Candidate{Enabled: map[string]bool{"opt_a": true}}
	err := partial.Validate(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	unknown := Candidate{Enabled: map[string]bool{"opt_a": true, "opt_x": false}}
	err = unknown.Validate(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestCandidate_FeatureFlags_DeterministicOrder(t *testing.T) {
	// GIVEN two candidates built from differently-ordered inputs
	a := Candidate{Enabled: map[string]bool{}}
	for _, name := range []string{"opt_c", "opt_a", "opt_b"} {
		a.Enabled[name] = true
	}
	b := Candidate{Enabled: map[string]bool{}}
	for _, name := range []string{"opt_b", "opt_c", "opt_a"} {
		b.Enabled[name] = true
	}

	// THEN both yield the same lexicographic flag list
	want := []string{"opt_a", "opt_b", "opt_c"}
	assert.Equal(t, want, a.FeatureFlags())
	assert.Equal(t, want, b.FeatureFlags())
	assert.Equal(t, "opt_a,opt_b,opt_c", a.BuildTags())
}

func TestCandidate_BuildTags_EmptyForBaseline(t *testing.T) {
	reg := testRegistry(t, "opt_a")
	assert.Equal(t, "", NewBaselineCandidate(reg).BuildTags())
}

func TestCandidate_ExpectedTotalGain_SumsEnabledOnly(t *testing.T) {
	reg, err := NewRegistry([]Optimization{
		{Name: "opt_a", Risk: RiskLow, Priority: 0, ExpectedGain: 0.04},
		{Name: "opt_b", Risk: RiskLow, Priority: 1, ExpectedGain: 0.015},
		{Name: "opt_c", Risk: RiskLow, Priority: 2, ExpectedGain: 0.03},
	})
	require.NoError(t, err)

	cand := NewBaselineCandidate(reg).With("opt_a").With("opt_c")
	assert.InDelta(t, 0.07, cand.ExpectedTotalGain(reg), 1e-12)
}

func TestCandidate_JSONRoundTrip_PreservesEnabledAndFitness(t *testing.T) {
	// GIVEN a scored candidate
	reg := testRegistry(t, "opt_a", "opt_b", "opt_c")
	cand := NewBaselineCandidate(reg).With("opt_b")
	cand.Generation = 3
	cand.SetFitness(104.19999999999999)

	// WHEN serialized and reconstructed
	data, err := json.Marshal(cand)
	require.NoError(t, err)
	var back Candidate
	require.NoError(t, json.Unmarshal(data, &back))

	// THEN the enabled mapping and fitness survive exactly
	assert.Equal(t, cand.Enabled, back.Enabled)
	require.NotNil(t, back.Fitness)
	assert.Equal(t, *cand.Fitness, *back.Fitness)
	assert.Equal(t, cand.Generation, back.Generation)
}

func TestCandidate_Summary_StripsPrefix(t *testing.T) {
	reg := testRegistry(t, "opt_a", "opt_b")
	assert.Equal(t, "[baseline]", NewBaselineCandidate(reg).Summary())
	assert.Equal(t, "[a, b]", NewAllEnabledCandidate(reg).Summary())
}
