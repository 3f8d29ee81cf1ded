// Package benchparse extracts per-benchmark timings from raw benchmark
// reports. It has no dependency on tune/ — it turns report bytes into a
// mapping of benchmark id to elapsed nanoseconds, nothing more, so the
// evaluator's tests can feed it synthetic reports without running anything.
package benchparse

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/perf/benchfmt"
	"gonum.org/v1/gonum/stat"
)

// Format selects the report dialect to parse.
type Format string

const (
	// FormatGoBench is the standard `go test -bench` output format.
	FormatGoBench Format = "gobench"
	// FormatCriterion is the Criterion.rs console report format.
	FormatCriterion Format = "criterion"
)

// validFormats maps accepted report formats. Unexported to prevent mutation.
var validFormats = map[Format]bool{
	FormatGoBench:   true,
	FormatCriterion: true,
}

// IsValidFormat returns true if f is a recognized report format.
func IsValidFormat(f Format) bool { return validFormats[f] }

// Parse extracts benchmark id -> elapsed nanoseconds from a raw report.
// Lines that do not match the format are silently dropped; an id that
// appears more than once (repeated samples) is averaged. An empty map with
// a nil error means the report contained no usable measurements — whether
// that is fatal is the caller's decision.
func Parse(format Format, report []byte) (map[string]float64, error) {
	switch format {
	case FormatGoBench:
		return parseGoBench(report), nil
	case FormatCriterion:
		return parseCriterion(report), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// parseGoBench reads standard Go benchmark output via x/perf's benchfmt
// reader. benchfmt tidies ns/op values to sec/op, so both units are
// handled; anything the reader cannot parse is skipped.
func parseGoBench(report []byte) map[string]float64 {
	samples := make(map[string][]float64)

	r := benchfmt.NewReader(bytes.NewReader(report), "report")
	for r.Scan() {
		res, ok := r.Result().(*benchfmt.Result)
		if !ok {
			// Unit metadata or a syntax error record. Dropped.
			continue
		}
		for _, v := range res.Values {
			var ns float64
			switch {
			case v.OrigUnit == "ns/op":
				ns = v.OrigValue
			case v.Unit == "sec/op":
				ns = v.Value * 1e9
			case v.Unit == "ns/op":
				ns = v.Value
			default:
				continue
			}
			name := string(res.Name)
			samples[name] = append(samples[name], ns)
		}
	}
	// Reader errors mean a truncated or unreadable report; whatever was
	// parsed before the error still counts.
	return reduceSamples(samples)
}

// criterionLineRe matches Criterion console lines of the form
//
//	group/bench            time:   [123.45 ns 124.56 ns 125.67 ns]
//
// capturing the middle (point-estimate) value and its unit.
var criterionLineRe = regexp.MustCompile(`([\w./-]+/[\w./-]+)\s+time:\s+\[[\d.]+ \S+ ([\d.]+) (ns|µs|us|ms|s)\b`)

// parseCriterion scrapes Criterion.rs console output. All timings are
// normalized to nanoseconds.
func parseCriterion(report []byte) map[string]float64 {
	samples := make(map[string][]float64)

	for _, match := range criterionLineRe.FindAllSubmatch(report, -1) {
		name := string(match[1])
		val, err := strconv.ParseFloat(string(match[2]), 64)
		if err != nil {
			continue
		}
		switch string(match[3]) {
		case "µs", "us":
			val *= 1e3
		case "ms":
			val *= 1e6
		case "s":
			val *= 1e9
		}
		samples[name] = append(samples[name], val)
	}
	return reduceSamples(samples)
}

// reduceSamples collapses repeated measurements per benchmark id to their
// mean.
func reduceSamples(samples map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(samples))
	for name, vals := range samples {
		if len(vals) == 1 {
			out[name] = vals[0]
			continue
		}
		out[name] = stat.Mean(vals, nil)
	}
	return out
}
