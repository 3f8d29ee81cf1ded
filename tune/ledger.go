package tune

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HistoryEntry records one search step: what was tested, how it scored,
// whether it was accepted, and the best fitness after the step. Entries
// with a non-empty Error field mark evaluation failures; they carry no
// fitness and never change the running best.
type HistoryEntry struct {
	Optimization string   `json:"optimization,omitempty"`
	Combination  string   `json:"combination,omitempty"`
	Fitness      *float64 `json:"fitness,omitempty"`
	Accepted     bool     `json:"accepted"`
	BestFitness  float64  `json:"current_best"`
	Error        string   `json:"error,omitempty"`
}

// RunResult is the terminal snapshot of one tuning run, serialized as the
// JSON artifact.
type RunResult struct {
	RunID         string         `json:"run_id"`
	Strategy      string         `json:"strategy"`
	CompletedAt   time.Time      `json:"completed_at"`
	BestCandidate Candidate      `json:"best_candidate"`
	BestFeatures  []string       `json:"best_features"`
	History       []HistoryEntry `json:"history"`
}

// Ledger accumulates the per-step history of a single run. It is
// append-only: entries are never reordered or removed, and one strategy
// instance is its only writer.
type Ledger struct {
	runID     string
	strategy  string
	startedAt time.Time
	entries   []HistoryEntry
}

// NewLedger creates a ledger for one run of the named strategy.
func NewLedger(strategy string) *Ledger {
	return &Ledger{
		runID:     uuid.NewString(),
		strategy:  strategy,
		startedAt: time.Now(),
	}
}

// RunID returns the ledger's unique run identifier.
func (l *Ledger) RunID() string { return l.runID }

// Record appends one history entry.
func (l *Ledger) Record(entry HistoryEntry) {
	l.entries = append(l.entries, entry)
}

// Entries returns a copy of the recorded history.
func (l *Ledger) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Finalize builds the terminal snapshot. A nil best means no candidate
// ever improved on the baseline, in which case the baseline candidate
// itself is recorded as best.
func (l *Ledger) Finalize(best *Candidate, baseline Candidate) RunResult {
	chosen := baseline
	if best != nil {
		chosen = *best
	}
	return RunResult{
		RunID:         l.runID,
		Strategy:      l.strategy,
		CompletedAt:   time.Now(),
		BestCandidate: chosen,
		BestFeatures:  chosen.FeatureFlags(),
		History:       l.Entries(),
	}
}

// WriteArtifacts writes the run's two write-only outputs into dir: a
// timestamped JSON snapshot and a runnable shell snippet reproducing the
// winning tag set. Neither file is ever read back by the engine.
func (l *Ledger) WriteArtifacts(dir string, result RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing run result: %w", err)
	}
	jsonPath := filepath.Join(dir, fmt.Sprintf("code_opt_%s.json", result.CompletedAt.Format("20060102_150405")))
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", jsonPath, err)
	}
	logrus.Infof("Results saved to: %s", jsonPath)

	scriptPath := filepath.Join(dir, "best_flags.sh")
	if err := os.WriteFile(scriptPath, []byte(reproScript(result)), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", scriptPath, err)
	}
	logrus.Infof("Reproduction script saved to: %s", scriptPath)
	return nil
}

// reproScript renders the human-runnable snippet capturing the winning
// selector set.
func reproScript(result RunResult) string {
	fitness := 0.0
	if f, ok := result.BestCandidate.FitnessValue(); ok {
		fitness = f
	}
	tags := result.BestCandidate.BuildTags()
	return fmt.Sprintf(`#!/bin/sh
# Best optimization tags discovered by benchtune
# Fitness: %.1f%%
# Run: %s
# Generated: %s

TAGS=%q

# Build with optimizations:
#   go build -tags "$TAGS" ./...

# Run benchmarks with optimizations:
#   go test -run '^$' -bench . -tags "$TAGS" ./...

echo "Best tags: $TAGS"
`, fitness, result.RunID, result.CompletedAt.Format(time.RFC3339), tags)
}
