package tune

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultRunTimeout is the wall-clock ceiling for one external benchmark
// run. Exceeding it fails that one run, never the whole search.
const DefaultRunTimeout = 300 * time.Second

// ReportRunner invokes the external benchmark suite with a set of enabled
// feature selectors and returns the raw textual report. Implementations
// must respect ctx cancellation and return an error on non-zero exit.
type ReportRunner interface {
	Run(ctx context.Context, features []string) ([]byte, error)
}

// BenchCommandRunner runs `go test -bench` in a target module directory,
// enabling optimizations through build tags.
type BenchCommandRunner struct {
	// Dir is the working directory of the module under measurement.
	Dir string
	// Pattern selects which benchmarks to run (the -bench argument).
	Pattern string
	// Packages is the package pattern to test. Defaults to "./...".
	Packages string
	// BenchTime is passed through as -benchtime when non-empty.
	BenchTime string
	// Count is the -count repetition; values below 1 mean unset.
	Count int
	// Timeout bounds one invocation. Zero means DefaultRunTimeout.
	Timeout time.Duration
}

// Run executes the benchmark command with the given feature tags and
// returns its combined output. Timeouts and non-zero exits are errors;
// the caller decides whether that is fatal.
func (r *BenchCommandRunner) Run(ctx context.Context, features []string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pattern := r.Pattern
	if pattern == "" {
		pattern = "."
	}
	packages := r.Packages
	if packages == "" {
		packages = "./..."
	}

	args := []string{"test", "-run", "^$", "-bench", pattern}
	if r.BenchTime != "" {
		args = append(args, "-benchtime", r.BenchTime)
	}
	if r.Count >= 1 {
		args = append(args, "-count", fmt.Sprintf("%d", r.Count))
	}
	if len(features) > 0 {
		args = append(args, "-tags", strings.Join(features, ","))
	}
	args = append(args, packages)

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = r.Dir

	logrus.Debugf("Running benchmark command: go %v (dir=%s)", args, r.Dir)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("benchmark run timed out after %s", timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("benchmark run failed: %w: %s", err, truncateOutput(out))
	}
	return out, nil
}

// truncateOutput keeps error messages readable when the tool dumps a
// full compile log.
func truncateOutput(out []byte) string {
	const max = 512
	if len(out) <= max {
		return string(out)
	}
	return string(out[:max]) + "... (truncated)"
}
