package tune

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitnessReduce_MeanOverHotPathMatches(t *testing.T) {
	// GIVEN ratios where only hot-path benchmarks moved
	fc := FitnessConfig{HotPaths: []string{"set_direct", "get_direct"}}
	result := EvaluationResult{
		"set_direct/key_len_16":    1.10,
		"get_direct/cache_hit":     1.30,
		"encode_integer/small_i64": 5.00, // not hot, must not count
	}

	// WHEN reduced against the baseline score
	fitness := fc.Reduce(BaselineFitness, result)

	// THEN fitness scales by the mean of the hot ratios only
	assert.InDelta(t, 120.0, fitness, 1e-9)
}

func TestFitnessReduce_NoMatch_IsNeutral(t *testing.T) {
	// GIVEN a result with no hot-path benchmark
	fc := FitnessConfig{HotPaths: []string{"set_direct"}}
	result := EvaluationResult{"hash_key/len_8": 1.5}

	// THEN fitness is unchanged
	assert.Equal(t, 87.5, fc.Reduce(87.5, result))
}

func TestFitnessReduce_EmptyResult_IsNeutral(t *testing.T) {
	fc := FitnessConfig{HotPaths: DefaultHotPaths()}
	assert.Equal(t, BaselineFitness, fc.Reduce(BaselineFitness, EvaluationResult{}))
}

func TestFitnessReduce_CompoundsOnPrevious(t *testing.T) {
	// Accepted steps compound multiplicatively: 100 * 1.2 * 1.2 = 144.
	fc := FitnessConfig{HotPaths: []string{"set_direct"}}
	result := EvaluationResult{"set_direct/value_len_64": 1.2}

	step1 := fc.Reduce(BaselineFitness, result)
	step2 := fc.Reduce(step1, result)
	assert.InDelta(t, 144.0, step2, 1e-9)
}
