package tune

import (
	"strings"

	"gonum.org/v1/gonum/stat"
)

// BaselineFitness is the fixed reference score of the all-disabled
// candidate. All fitness values are multiples of this baseline.
const BaselineFitness = 100.0

// DefaultHotPaths are the benchmark-name substrings that define the hot
// path of the service under tuning.
func DefaultHotPaths() []string {
	return []string{"set_direct", "get_direct"}
}

// FitnessConfig selects which benchmarks contribute to the aggregate
// score.
type FitnessConfig struct {
	// HotPaths are substrings matched against benchmark ids; a benchmark
	// counts toward fitness when its id contains at least one of them.
	HotPaths []string
}

// Reduce folds an evaluation result into a fitness score: the previous
// fitness scaled by the mean ratio across hot-path benchmarks. When no
// benchmark matches, the mean is neutral (1.0) and fitness is unchanged.
// Because each accepted step compounds on the prior best, fitness stays
// relative to the original baseline rather than the previous step's raw
// timings.
func (fc FitnessConfig) Reduce(prev float64, result EvaluationResult) float64 {
	relevant := make([]float64, 0, len(result))
	for bench, ratio := range result {
		if matchesAny(bench, fc.HotPaths) {
			relevant = append(relevant, ratio)
		}
	}
	if len(relevant) == 0 {
		return prev
	}
	return prev * stat.Mean(relevant, nil)
}

func matchesAny(id string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(id, s) {
			return true
		}
	}
	return false
}
