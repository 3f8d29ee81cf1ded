package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	tune "github.com/benchtune/benchtune/tune"
	"github.com/benchtune/benchtune/tune/benchparse"
)

var (
	// CLI flags for the search run
	mode         string        // Search strategy: incremental or combinatorial
	mockEval     bool          // Use the mock evaluator (no external tool)
	outputDir    string        // Directory for the JSON artifact and repro script
	logLevel     string        // Log verbosity level
	budget       int           // Max benchmark runs for the combinatorial strategy
	runTimeout   time.Duration // Wall-clock ceiling per external benchmark run
	hotPaths     []string      // Benchmark-name substrings that define the hot path
	catalogPath  string        // Optional YAML catalog overriding the built-in one
	reportFormat string        // Benchmark report dialect: gobench or criterion

	// CLI flags for the external benchmark invocation
	benchDir      string // Working directory of the module under measurement
	benchPattern  string // -bench pattern selecting which benchmarks to run
	benchPackages string // Package pattern passed to go test
	benchTime     string // -benchtime passed through when non-empty
	benchCount    int    // -count repetition per run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "benchtune",
	Short: "Benchmark-driven search over code-level optimization flags",
}

// runCmd executes one optimization search using parameters from CLI flags.
// Its Run function is assigned in init to avoid an initialization cycle
// (the closure refers to helpers that refer back to runCmd).
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the optimization search",
}

func runCmdRun(cmd *cobra.Command, args []string) {
	// Set up logging
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	reg, fitness := loadCatalog(catalogPath, hotPaths)

	evaluator := buildEvaluator(reg, fitness)
	ledger := tune.NewLedger(mode)

	var strategy tune.Strategy
	switch mode {
	case tune.StrategyIncremental:
		strategy = &tune.IncrementalStrategy{
			Registry:  reg,
			Evaluator: evaluator,
			Fitness:   fitness,
			Ledger:    ledger,
		}
	case tune.StrategyCombinatorial:
		strategy = &tune.CombinatorialStrategy{
			Registry:  reg,
			Evaluator: evaluator,
			Fitness:   fitness,
			Ledger:    ledger,
			Budget:    budget,
		}
	default:
		logrus.Fatalf("Unknown mode %q (want %s or %s)", mode, tune.StrategyIncremental, tune.StrategyCombinatorial)
	}

	startTime := time.Now()
	best, err := strategy.Run(context.Background())
	if err != nil {
		logrus.Fatalf("Search failed: %v", err)
	}

	result := ledger.Finalize(&best, tune.NewBaselineCandidate(reg))
	if err := ledger.WriteArtifacts(outputDir, result); err != nil {
		logrus.Fatalf("Writing artifacts: %v", err)
	}

	printBest(result)
	logrus.Infof("Search complete in %s.", time.Since(startTime).Round(time.Second))
}

// buildEvaluator wires the benchmark evaluator, or its mock stand-in for
// dry runs.
func buildEvaluator(reg *tune.Registry, fitness tune.FitnessConfig) tune.Evaluator {
	if mockEval {
		logrus.Info("Using mock evaluator (no external benchmark runs)")
		return &tune.MockEvaluator{Registry: reg, HotPaths: fitness.HotPaths}
	}
	runner := &tune.BenchCommandRunner{
		Dir:       benchDir,
		Pattern:   benchPattern,
		Packages:  benchPackages,
		BenchTime: benchTime,
		Count:     benchCount,
		Timeout:   runTimeout,
	}
	evaluator, err := tune.NewBenchEvaluator(runner, benchparse.Format(reportFormat))
	if err != nil {
		logrus.Fatalf("Invalid evaluator configuration: %v", err)
	}
	return evaluator
}

// printBest reports the winning configuration and how to reproduce it.
func printBest(result tune.RunResult) {
	fitness, _ := result.BestCandidate.FitnessValue()
	tags := result.BestCandidate.BuildTags()

	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("  BEST CONFIGURATION")
	fmt.Println("============================================================")
	fmt.Printf("  Fitness: %.1f%%\n", fitness)
	if tags == "" {
		fmt.Println("  Tags: (baseline)")
		fmt.Println()
		fmt.Println("  Build command:")
		fmt.Println("    go build ./...")
	} else {
		fmt.Printf("  Tags: %s\n", tags)
		fmt.Println()
		fmt.Println("  Build command:")
		fmt.Printf("    go build -tags %q ./...\n", tags)
	}
	fmt.Println()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Run = runCmdRun
	runCmd.Flags().StringVar(&mode, "mode", tune.StrategyIncremental, "Search strategy (incremental, combinatorial)")
	runCmd.Flags().BoolVar(&mockEval, "mock", false, "Use the mock evaluator instead of running benchmarks")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "results/code_opt", "Output directory for run artifacts")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().IntVar(&budget, "budget", tune.DefaultCombinationBudget, "Max benchmark runs for the combinatorial strategy")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", tune.DefaultRunTimeout, "Wall-clock ceiling per benchmark run")
	runCmd.Flags().StringSliceVar(&hotPaths, "hot-paths", tune.DefaultHotPaths(), "Benchmark-name substrings that count toward fitness")
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML file overriding the built-in optimization catalog")
	runCmd.Flags().StringVar(&reportFormat, "report-format", string(benchparse.FormatGoBench), "Benchmark report format (gobench, criterion)")

	// External benchmark invocation
	runCmd.Flags().StringVar(&benchDir, "bench-dir", ".", "Working directory of the module under measurement")
	runCmd.Flags().StringVar(&benchPattern, "bench-pattern", "BenchmarkHotPaths", "Benchmark selection pattern (-bench)")
	runCmd.Flags().StringVar(&benchPackages, "bench-packages", "./...", "Package pattern passed to go test")
	runCmd.Flags().StringVar(&benchTime, "bench-time", "", "Per-benchmark measurement time (-benchtime)")
	runCmd.Flags().IntVar(&benchCount, "bench-count", 0, "Benchmark repetition count (-count)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
