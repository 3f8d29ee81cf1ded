package tune

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Record_PreservesAppendOrder(t *testing.T) {
	ledger := NewLedger(StrategyIncremental)
	for _, name := range []string{"opt_a", "opt_b", "opt_c"} {
		ledger.Record(HistoryEntry{Optimization: name, BestFitness: BaselineFitness})
	}

	entries := ledger.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "opt_a", entries[0].Optimization)
	assert.Equal(t, "opt_b", entries[1].Optimization)
	assert.Equal(t, "opt_c", entries[2].Optimization)
}

func TestLedger_Entries_ReturnsCopy(t *testing.T) {
	ledger := NewLedger(StrategyIncremental)
	ledger.Record(HistoryEntry{Optimization: "opt_a"})

	entries := ledger.Entries()
	entries[0].Optimization = "mutated"
	assert.Equal(t, "opt_a", ledger.Entries()[0].Optimization)
}

func TestLedger_Finalize_NilBest_FallsBackToBaseline(t *testing.T) {
	// GIVEN a run where no optimization improved on the baseline
	reg := testRegistry(t, "opt_a", "opt_b")
	baseline := NewBaselineCandidate(reg)
	baseline.SetFitness(BaselineFitness)
	ledger := NewLedger(StrategyIncremental)

	// WHEN finalized without a best candidate
	result := ledger.Finalize(nil, baseline)

	// THEN the baseline itself is the recorded best
	assert.Equal(t, baseline.Enabled, result.BestCandidate.Enabled)
	assert.Empty(t, result.BestFeatures)
	fitness, ok := result.BestCandidate.FitnessValue()
	require.True(t, ok)
	assert.Equal(t, BaselineFitness, fitness)
}

func TestLedger_WriteArtifacts_JSONRoundTripsBestCandidate(t *testing.T) {
	// GIVEN a finalized run with a scored best candidate
	reg := testRegistry(t, "opt_a", "opt_b")
	best := NewBaselineCandidate(reg).With("opt_b")
	best.SetFitness(104.2)
	ledger := NewLedger(StrategyCombinatorial)
	ledger.Record(HistoryEntry{Combination: "[b]", Fitness: best.Fitness, Accepted: true, BestFitness: 104.2})
	result := ledger.Finalize(&best, NewBaselineCandidate(reg))

	// WHEN artifacts are written
	dir := t.TempDir()
	require.NoError(t, ledger.WriteArtifacts(dir, result))

	// THEN the JSON artifact reconstructs the same enabled mapping and
	// bit-identical fitness
	matches, err := filepath.Glob(filepath.Join(dir, "code_opt_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var back RunResult
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, result.RunID, back.RunID)
	assert.Equal(t, StrategyCombinatorial, back.Strategy)
	assert.Equal(t, best.Enabled, back.BestCandidate.Enabled)
	require.NotNil(t, back.BestCandidate.Fitness)
	assert.Equal(t, *best.Fitness, *back.BestCandidate.Fitness)
	assert.Equal(t, []string{"opt_b"}, back.BestFeatures)
	require.Len(t, back.History, 1)
	assert.True(t, back.History[0].Accepted)
}

func TestLedger_WriteArtifacts_ReproScriptCarriesWinningTags(t *testing.T) {
	reg := testRegistry(t, "opt_a", "opt_b")
	best := NewAllEnabledCandidate(reg)
	best.SetFitness(112.0)
	ledger := NewLedger(StrategyIncremental)
	result := ledger.Finalize(&best, NewBaselineCandidate(reg))

	dir := t.TempDir()
	require.NoError(t, ledger.WriteArtifacts(dir, result))

	scriptPath := filepath.Join(dir, "best_flags.sh")
	data, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `TAGS="opt_a,opt_b"`), "script must carry the winning tag set")

	info, err := os.Stat(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestNewLedger_RunIDsAreUnique(t *testing.T) {
	a := NewLedger(StrategyIncremental)
	b := NewLedger(StrategyIncremental)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}
