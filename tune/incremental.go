package tune

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// IncrementalStrategy tests one optimization at a time in declared
// priority order, keeping each change only on strict improvement. Greedy
// and order-sensitive: it costs one benchmark run per optimization and
// exposes each optimization's isolated marginal effect, but cannot find
// combinations whose value comes from interaction between optimizations.
type IncrementalStrategy struct {
	Registry  *Registry
	Evaluator Evaluator
	Fitness   FitnessConfig
	Ledger    *Ledger
}

// StrategyIncremental names the incremental strategy in CLI flags and
// ledger artifacts.
const StrategyIncremental = "incremental"

// Run captures the baseline, then walks the registry's priority order.
// Per step: derive a candidate with the next optimization forced on,
// evaluate it, and accept iff its fitness strictly beats the current
// best (a tie carries measurement noise and no gain). An evaluation
// failure is recorded with an error marker and treated as a rejection;
// it never aborts the remaining steps. Only a baseline failure is fatal.
func (s *IncrementalStrategy) Run(ctx context.Context) (Candidate, error) {
	logrus.Info("Starting incremental optimization search")

	if _, err := s.Evaluator.CaptureBaseline(ctx); err != nil {
		return Candidate{}, err
	}

	current := NewBaselineCandidate(s.Registry)
	current.SetFitness(BaselineFitness)

	for _, opt := range s.Registry.ByPriority() {
		logrus.Infof("Testing optimization: %s", opt.Name)
		logrus.Infof("  Description: %s", opt.Description)
		logrus.Infof("  Expected gain: %.1f%%, risk: %s", opt.ExpectedGain*100, opt.Risk)

		test := current.With(opt.Name)
		test.Generation = opt.Priority + 1

		result, err := s.Evaluator.Evaluate(ctx, test)
		if err != nil {
			if !errors.Is(err, ErrEvaluationFailed) {
				return Candidate{}, err
			}
			logrus.Warnf("  FAILED: %v", err)
			currentFitness, _ := current.FitnessValue()
			s.Ledger.Record(HistoryEntry{
				Optimization: opt.Name,
				Accepted:     false,
				BestFitness:  currentFitness,
				Error:        err.Error(),
			})
			continue
		}

		currentFitness, _ := current.FitnessValue()
		testFitness := s.Fitness.Reduce(currentFitness, result)
		test.SetFitness(testFitness)

		accepted := testFitness > currentFitness
		if accepted {
			logrus.Infof("  ACCEPTED: %.1f%% (+%.2f)", testFitness, testFitness-currentFitness)
			current = test
		} else {
			logrus.Infof("  REJECTED: %.1f%% (best stays %.1f%%)", testFitness, currentFitness)
		}

		bestFitness, _ := current.FitnessValue()
		s.Ledger.Record(HistoryEntry{
			Optimization: opt.Name,
			Fitness:      test.Fitness,
			Accepted:     accepted,
			BestFitness:  bestFitness,
		})
	}

	bestFitness, _ := current.FitnessValue()
	logrus.Infof("Incremental search done: best %s at %.1f%%", current.Summary(), bestFitness)
	return current, nil
}

// Name returns the strategy identifier.
func (s *IncrementalStrategy) Name() string { return StrategyIncremental }
