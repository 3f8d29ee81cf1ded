package tune

import "context"

// Strategy explores candidate space and returns the best-found candidate.
// Implementations own their Ledger for the duration of the run; there are
// no concurrent writers.
type Strategy interface {
	Run(ctx context.Context) (Candidate, error)
	Name() string
}

var (
	_ Strategy = (*IncrementalStrategy)(nil)
	_ Strategy = (*CombinatorialStrategy)(nil)
)
