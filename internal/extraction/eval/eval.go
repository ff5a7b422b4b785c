// Package eval scores catalog extraction against ground-truth statement
// fixtures, so changes to the catalog or matching rules can be compared.
package eval

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/castlemilk/eeff/internal/extraction"
)

// GroundTruth is the expected value per label for a fixture. Labels that are
// absent are expected to be zero.
type GroundTruth struct {
	Name   string           `json:"name"`
	Values map[string]int64 `json:"values"`
}

// Mismatch records a label whose extracted value differs from ground truth.
type Mismatch struct {
	Label    string
	Expected int64
	Got      int64
}

// EvalResult holds metrics from running one strategy on one fixture.
type EvalResult struct {
	Strategy      string
	Fixture       string
	Expected      int // labels with a non-zero expected value
	Extracted     int // labels with a non-zero extracted value
	Matched       int // non-zero labels extracted exactly
	Precision     float64
	Recall        float64
	F1            float64
	ExactAccuracy float64 // share of all catalog labels, zeros included, that are exact
	Mismatches    []Mismatch
	Duration      time.Duration
}

// StrategyFunc turns statement text into an extraction result.
type StrategyFunc func(text string) extraction.Result

// CatalogStrategy evaluates a catalog's matcher.
func CatalogStrategy(c *extraction.Catalog) StrategyFunc {
	return c.ParseFinancialData
}

// ComputeMetrics compares an extraction result against ground truth.
func ComputeMetrics(strategy, fixture string, got extraction.Result, truth *GroundTruth, duration time.Duration) *EvalResult {
	result := &EvalResult{
		Strategy: strategy,
		Fixture:  fixture,
		Duration: duration,
	}

	exact := 0
	for _, label := range got.Labels() {
		value, _ := got.Get(label)
		want := truth.Values[label]

		if want != 0 {
			result.Expected++
		}
		if value != 0 {
			result.Extracted++
		}
		if value == want {
			exact++
			if want != 0 {
				result.Matched++
			}
			continue
		}
		result.Mismatches = append(result.Mismatches, Mismatch{Label: label, Expected: want, Got: value})
	}

	if result.Extracted > 0 {
		result.Precision = float64(result.Matched) / float64(result.Extracted)
	}
	if result.Expected > 0 {
		result.Recall = float64(result.Matched) / float64(result.Expected)
	}
	if p, r := result.Precision, result.Recall; p+r > 0 {
		result.F1 = 2 * p * r / (p + r)
	}
	if n := got.Len(); n > 0 {
		result.ExactAccuracy = float64(exact) / float64(n)
	}

	return result
}

// RunEval executes all strategies against all fixtures. Results are ordered
// by fixture, then strategy name.
func RunEval(strategies map[string]StrategyFunc, fixtures []*Fixture) []*EvalResult {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*EvalResult
	for _, fixture := range fixtures {
		for _, name := range names {
			start := time.Now()
			got := strategies[name](fixture.Text)
			results = append(results, ComputeMetrics(name, fixture.Name, got, fixture.GroundTruth, time.Since(start)))
		}
	}
	return results
}

// PrintSummary outputs a formatted comparison table to an io.Writer.
func PrintSummary(w io.Writer, results []*EvalResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Strategy\tFixture\tP\tR\tF1\tExact%\tMatch\tTime")
	fmt.Fprintln(tw, "--------\t-------\t-\t-\t--\t------\t-----\t----")

	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.0f%%\t%d/%d\t%s\n",
			r.Strategy,
			r.Fixture,
			r.Precision,
			r.Recall,
			r.F1,
			r.ExactAccuracy*100,
			r.Matched,
			r.Expected,
			r.Duration.Round(time.Microsecond),
		)
	}
	tw.Flush()

	for _, r := range results {
		if len(r.Mismatches) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s / %s mismatches:\n", r.Strategy, r.Fixture)
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "  %-45s expected %d, got %d\n", m.Label, m.Expected, m.Got)
		}
	}
}
