package tune

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/benchtune/benchtune/tune/benchparse"
)

// EvaluationResult maps a benchmark id to its relative performance ratio
// against the baseline: baseline time divided by candidate time, so values
// above 1.0 mean the candidate is faster. Only benchmarks present in the
// baseline appear; every emitted ratio is baseline-relative.
type EvaluationResult map[string]float64

// Evaluator scores candidates against a single captured baseline.
//
// CaptureBaseline must succeed before any relative score exists; its
// failure wraps ErrBaselineUnavailable and is fatal to the run. Evaluate
// failures wrap ErrEvaluationFailed and are recoverable per candidate.
type Evaluator interface {
	CaptureBaseline(ctx context.Context) (map[string]float64, error)
	Evaluate(ctx context.Context, cand Candidate) (EvaluationResult, error)
}

// BenchEvaluator runs the external benchmark suite through a ReportRunner
// and reduces its report to baseline-relative ratios. The baseline is
// captured at most once per evaluator and cached for every subsequent
// computation.
//
// Not safe for concurrent use; evaluations are strictly sequential because
// concurrent benchmark runs would share CPU and cache state and invalidate
// the timings.
type BenchEvaluator struct {
	runner   ReportRunner
	format   benchparse.Format
	baseline map[string]float64
}

// NewBenchEvaluator creates an evaluator over the given runner and report
// format.
func NewBenchEvaluator(runner ReportRunner, format benchparse.Format) (*BenchEvaluator, error) {
	if runner == nil {
		return nil, fmt.Errorf("%w: nil report runner", ErrConfiguration)
	}
	if !benchparse.IsValidFormat(format) {
		return nil, fmt.Errorf("%w: unknown report format %q", ErrConfiguration, format)
	}
	return &BenchEvaluator{runner: runner, format: format}, nil
}

// CaptureBaseline runs the suite with every optimization disabled and
// caches the per-benchmark timings. Subsequent calls return the cached
// mapping without re-running.
func (e *BenchEvaluator) CaptureBaseline(ctx context.Context) (map[string]float64, error) {
	if e.baseline != nil {
		return e.baseline, nil
	}
	logrus.Info("Capturing benchmark baseline...")

	results, err := e.runOnce(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaselineUnavailable, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: baseline report contained no measurements", ErrBaselineUnavailable)
	}
	e.baseline = results
	logrus.Infof("Baseline captured: %d benchmarks", len(results))
	return results, nil
}

// Evaluate runs the suite with the candidate's enabled optimizations and
// returns per-benchmark ratios against the baseline. The baseline is
// captured first if it has not been already. Benchmarks absent from the
// baseline are omitted; a non-positive candidate time yields ratio 1.0
// rather than a division blowup.
func (e *BenchEvaluator) Evaluate(ctx context.Context, cand Candidate) (EvaluationResult, error) {
	if _, err := e.CaptureBaseline(ctx); err != nil {
		return nil, err
	}

	flags := cand.FeatureFlags()
	logrus.Debugf("Evaluating candidate %s (tags: %s)", cand.Summary(), strings.Join(flags, ","))

	results, err := e.runOnce(ctx, flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: report contained no measurements", ErrEvaluationFailed)
	}

	relative := make(EvaluationResult, len(results))
	for bench, timeNs := range results {
		baselineNs, ok := e.baseline[bench]
		if !ok {
			continue
		}
		if timeNs <= 0 {
			relative[bench] = 1.0
			continue
		}
		relative[bench] = baselineNs / timeNs
	}
	return relative, nil
}

func (e *BenchEvaluator) runOnce(ctx context.Context, features []string) (map[string]float64, error) {
	report, err := e.runner.Run(ctx, features)
	if err != nil {
		return nil, err
	}
	return benchparse.Parse(e.format, report)
}

// MockEvaluator synthesizes plausible results without invoking any
// external tool. Hot-path benchmarks speed up by the sum of the enabled
// optimizations' expected gains; everything else stays at baseline. Used
// for dry runs and CLI plumbing tests.
type MockEvaluator struct {
	Registry *Registry
	HotPaths []string

	// Benchmarks is the synthetic benchmark id set. Defaults to a small
	// mixed hot/cold suite when empty.
	Benchmarks []string
}

// CaptureBaseline returns a fixed synthetic baseline.
func (m *MockEvaluator) CaptureBaseline(ctx context.Context) (map[string]float64, error) {
	baseline := make(map[string]float64, len(m.benchIDs()))
	for _, id := range m.benchIDs() {
		baseline[id] = 1000.0
	}
	return baseline, nil
}

// Evaluate returns ratio 1 + sum(expected gains) for hot-path benchmarks
// and 1.0 for the rest.
func (m *MockEvaluator) Evaluate(ctx context.Context, cand Candidate) (EvaluationResult, error) {
	gain := cand.ExpectedTotalGain(m.Registry)
	result := make(EvaluationResult, len(m.benchIDs()))
	for _, id := range m.benchIDs() {
		if matchesAny(id, m.HotPaths) {
			result[id] = 1.0 + gain
		} else {
			result[id] = 1.0
		}
	}
	return result, nil
}

func (m *MockEvaluator) benchIDs() []string {
	if len(m.Benchmarks) > 0 {
		return m.Benchmarks
	}
	return []string{
		"set_direct/key_len_16",
		"set_direct/value_len_64",
		"get_direct/cache_hit",
		"get_direct/cache_miss",
		"hash_key/len_8",
		"encode_integer/small_i64",
	}
}
