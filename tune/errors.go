package tune

import "errors"

// Sentinel errors for the three failure classes of a tuning run.
// Callers discriminate with errors.Is; sites that raise them attach
// context with fmt.Errorf("...: %w", ...).
var (
	// ErrConfiguration indicates an invalid static setup: a duplicate or
	// unknown optimization name, or a candidate whose enabled set does not
	// cover the registry. Fatal, never recovered.
	ErrConfiguration = errors.New("configuration error")

	// ErrEvaluationFailed indicates a single candidate's benchmark run
	// failed: non-zero exit, timeout, or an unusable report. Recovered at
	// the per-candidate level by both strategies.
	ErrEvaluationFailed = errors.New("evaluation failed")

	// ErrBaselineUnavailable indicates the baseline capture itself failed.
	// Fatal to the whole run: no relative scoring is possible without it.
	ErrBaselineUnavailable = errors.New("baseline unavailable")
)
