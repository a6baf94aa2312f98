package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// Snapshot renders a run as the text stored in golden files: the
// indented original and optimized plans and the shape of the result.
func Snapshot(name string, result *Result) ([]byte, error) {
	original, err := sse.ParseOp(result.Original)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	var optimized queryir.Op
	if result.Optimized != "" {
		if optimized, err = sse.ParseOp(result.Optimized); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "original:\n%s\n", indent(sse.Pretty(original)))
	if optimized != nil {
		fmt.Fprintf(&b, "optimized:\n%s\n", indent(sse.Pretty(optimized)))
	}
	fmt.Fprintf(&b, "solutions: %d\n", result.Solutions)
	fmt.Fprintf(&b, "ordered: %t\n", result.Ordered)
	return []byte(b.String()), nil
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// RunWithGolden runs a scenario, fails the test on any failed check,
// and compares its snapshot with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snap, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snap)
	return nil
}
