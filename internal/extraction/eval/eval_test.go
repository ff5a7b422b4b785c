package eval

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/castlemilk/eeff/internal/extraction"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLoadFixtures(t *testing.T) {
	fixtures, err := LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	if len(fixtures) != len(fixtureNames) {
		t.Fatalf("got %d fixtures, want %d", len(fixtures), len(fixtureNames))
	}
	for _, f := range fixtures {
		if f.Text == "" {
			t.Errorf("fixture %s has empty text", f.Name)
		}
		if f.GroundTruth == nil || f.GroundTruth.Name != f.Name {
			t.Errorf("fixture %s has mismatched ground truth", f.Name)
		}
		for label := range f.GroundTruth.Values {
			if _, ok := extraction.ParseFinancialData("").Get(label); !ok {
				t.Errorf("fixture %s: ground truth label %q is not in the catalog", f.Name, label)
			}
		}
	}
}

func TestComputeMetrics(t *testing.T) {
	catalog, err := extraction.NewCatalog([]extraction.Category{
		{Label: "A", Code: "10000"},
		{Label: "B", Code: "20000"},
		{Label: "C", Code: "30000"},
		{Label: "D", Code: "40000"},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	got := catalog.ParseFinancialData("10000 A 100\n20000 B 7\n40000 D 5")
	truth := &GroundTruth{Values: map[string]int64{"A": 100, "B": 200, "C": 300}}

	r := ComputeMetrics("default", "synthetic", got, truth, 0)

	if r.Expected != 3 || r.Extracted != 3 || r.Matched != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/3/1", r.Expected, r.Extracted, r.Matched)
	}
	if !approxEqual(r.Precision, 1.0/3) || !approxEqual(r.Recall, 1.0/3) || !approxEqual(r.F1, 1.0/3) {
		t.Fatalf("P/R/F1 = %.3f/%.3f/%.3f, want 0.333 each", r.Precision, r.Recall, r.F1)
	}
	if !approxEqual(r.ExactAccuracy, 0.25) {
		t.Fatalf("ExactAccuracy = %.3f, want 0.25", r.ExactAccuracy)
	}
	if len(r.Mismatches) != 3 {
		t.Fatalf("got %d mismatches, want 3", len(r.Mismatches))
	}
	if r.Mismatches[0] != (Mismatch{Label: "B", Expected: 200, Got: 7}) {
		t.Fatalf("unexpected first mismatch: %+v", r.Mismatches[0])
	}
}

func TestComputeMetrics_NothingExpectedNothingFound(t *testing.T) {
	r := ComputeMetrics("default", "empty", extraction.ParseFinancialData(""), &GroundTruth{}, 0)
	if r.F1 != 0 || r.Precision != 0 || r.Recall != 0 {
		t.Fatalf("expected zero P/R/F1, got %+v", r)
	}
	if r.ExactAccuracy != 1 {
		t.Fatalf("ExactAccuracy = %.2f, want 1", r.ExactAccuracy)
	}
}

func TestRunEval_DefaultCatalog(t *testing.T) {
	fixtures, err := LoadFixtures()
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}

	results := RunEval(map[string]StrategyFunc{
		"default": CatalogStrategy(extraction.DefaultCatalog()),
	}, fixtures)

	byFixture := make(map[string]*EvalResult, len(results))
	for _, r := range results {
		byFixture[r.Fixture] = r
	}

	for _, name := range []string{"clean_statement", "two_column_statement"} {
		r := byFixture[name]
		if r == nil {
			t.Fatalf("missing result for %s", name)
		}
		if r.F1 != 1 || r.ExactAccuracy != 1 {
			t.Errorf("%s: F1 = %.2f, exact = %.2f, mismatches %+v; want perfect score", name, r.F1, r.ExactAccuracy, r.Mismatches)
		}
	}

	// Split lines, a missing accent and a decimal figure are not recovered.
	messy := byFixture["messy_statement"]
	if messy.Expected != 5 || messy.Extracted != 3 || messy.Matched != 2 {
		t.Fatalf("messy counts = %d/%d/%d, want 5/3/2", messy.Expected, messy.Extracted, messy.Matched)
	}
	if !approxEqual(messy.F1, 0.5) {
		t.Errorf("messy F1 = %.3f, want 0.5", messy.F1)
	}
	if !approxEqual(messy.ExactAccuracy, 0.8) {
		t.Errorf("messy exact accuracy = %.3f, want 0.8", messy.ExactAccuracy)
	}

	var buf bytes.Buffer
	PrintSummary(&buf, results)
	out := buf.String()
	if !strings.Contains(out, "messy_statement mismatches:") {
		t.Errorf("summary missing mismatch section:\n%s", out)
	}
	if !strings.Contains(out, "Gastos Financieros") {
		t.Errorf("summary missing mismatched label:\n%s", out)
	}
}
