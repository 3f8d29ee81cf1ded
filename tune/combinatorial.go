package tune

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// StrategyCombinatorial names the combinatorial strategy in CLI flags and
// ledger artifacts.
const StrategyCombinatorial = "combinatorial"

// DefaultCombinationBudget caps how many candidates the combinatorial
// strategy will actually benchmark.
const DefaultCombinationBudget = 64

// maxCombinatorialNames bounds power-set enumeration; past this the 2^N
// candidate list does not fit in memory regardless of budget.
const maxCombinatorialNames = 20

// CombinatorialStrategy enumerates the power set of the optimization
// names, keeps the top candidates by a-priori expected gain up to a run
// budget, and benchmarks each one independently against the shared
// baseline. It reaches interaction effects the greedy strategy
// structurally cannot, at exponential enumeration cost bounded by the
// truncation.
type CombinatorialStrategy struct {
	Registry  *Registry
	Evaluator Evaluator
	Fitness   FitnessConfig
	Ledger    *Ledger

	// Budget strictly caps the number of external benchmark runs.
	// Values below 1 fall back to DefaultCombinationBudget.
	Budget int
}

// Run enumerates, prioritizes, truncates, and evaluates. Best-so-far is
// the maximum fitness in evaluation order, first seen wins ties. A failed
// evaluation is logged, recorded with an error marker, and skipped; only
// a baseline failure aborts the run.
func (s *CombinatorialStrategy) Run(ctx context.Context) (Candidate, error) {
	logrus.Info("Starting combinatorial optimization search")

	if s.Registry.Len() > maxCombinatorialNames {
		return Candidate{}, fmt.Errorf("%w: %d optimizations exceed the combinatorial limit of %d",
			ErrConfiguration, s.Registry.Len(), maxCombinatorialNames)
	}

	if _, err := s.Evaluator.CaptureBaseline(ctx); err != nil {
		return Candidate{}, err
	}

	candidates := s.enumerate()
	// Stable sort keeps enumeration order (subset size asc, lexicographic
	// within a size) as the tiebreak for equal expected gains.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ExpectedTotalGain(s.Registry) > candidates[j].ExpectedTotalGain(s.Registry)
	})

	budget := s.Budget
	if budget < 1 {
		budget = DefaultCombinationBudget
	}
	if len(candidates) > budget {
		candidates = candidates[:budget]
	}
	logrus.Infof("Testing %d combinations (budget %d)", len(candidates), budget)

	var best *Candidate
	for i, cand := range candidates {
		logrus.Infof("[%d/%d] Testing: %s (expected +%.1f%%)",
			i+1, len(candidates), cand.Summary(), cand.ExpectedTotalGain(s.Registry)*100)

		result, err := s.Evaluator.Evaluate(ctx, cand)
		if err != nil {
			if !errors.Is(err, ErrEvaluationFailed) {
				return Candidate{}, err
			}
			logrus.Warnf("  FAILED: %v", err)
			s.Ledger.Record(HistoryEntry{
				Combination: cand.Summary(),
				Accepted:    false,
				BestFitness: bestFitnessOr(best, BaselineFitness),
				Error:       err.Error(),
			})
			continue
		}

		fitness := s.Fitness.Reduce(BaselineFitness, result)
		cand.SetFitness(fitness)
		logrus.Infof("  Fitness: %.1f%%", fitness)

		newBest := false
		if best == nil {
			newBest = true
		} else if prev, _ := best.FitnessValue(); fitness > prev {
			newBest = true
		}
		if newBest {
			c := cand
			best = &c
			logrus.Info("  NEW BEST")
		}

		s.Ledger.Record(HistoryEntry{
			Combination: cand.Summary(),
			Fitness:     cand.Fitness,
			Accepted:    newBest,
			BestFitness: bestFitnessOr(best, BaselineFitness),
		})
	}

	if best == nil {
		// Every evaluation failed; the baseline is the best we know.
		baseline := NewBaselineCandidate(s.Registry)
		baseline.SetFitness(BaselineFitness)
		return baseline, nil
	}
	bestFitness, _ := best.FitnessValue()
	logrus.Infof("Combinatorial search done: best %s at %.1f%%", best.Summary(), bestFitness)
	return *best, nil
}

// Name returns the strategy identifier.
func (s *CombinatorialStrategy) Name() string { return StrategyCombinatorial }

// enumerate builds the full power set of registry names: subsets in
// ascending size, lexicographic within a size. Names() is already sorted,
// and the bitmask walk below visits combinations of each size in
// lexicographic order.
func (s *CombinatorialStrategy) enumerate() []Candidate {
	names := s.Registry.Names()
	n := len(names)

	candidates := make([]Candidate, 0, 1<<uint(n))
	for size := 0; size <= n; size++ {
		for _, combo := range combinations(n, size) {
			enabled := make(map[string]bool, n)
			for _, name := range names {
				enabled[name] = false
			}
			for _, idx := range combo {
				enabled[names[idx]] = true
			}
			candidates = append(candidates, Candidate{Enabled: enabled})
		}
	}
	return candidates
}

// combinations yields all size-k index subsets of [0,n) in lexicographic
// order.
func combinations(n, k int) [][]int {
	if k == 0 {
		return [][]int{{}}
	}
	var out [][]int
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]int, k)
		copy(combo, idx)
		out = append(out, combo)

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func bestFitnessOr(best *Candidate, fallback float64) float64 {
	if best == nil {
		return fallback
	}
	if f, ok := best.FitnessValue(); ok {
		return f
	}
	return fallback
}
