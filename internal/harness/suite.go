package harness

import (
	"context"
	"log/slog"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int                `json:"total"`
	Passed   int                `json:"passed"`
	Failed   int                `json:"failed"`
	Failures []ScenarioFailure  `json:"failures,omitempty"`
	Results  map[string]*Result `json:"-"`
}

// ScenarioFailure is one failed scenario.
type ScenarioFailure struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// RunDir loads and runs every scenario in dir. A scenario that cannot
// be set up counts as failed; only an unreadable directory or scenario
// file is returned as an error.
func RunDir(ctx context.Context, dir string, logger *slog.Logger) (*SuiteResult, error) {
	scenarios, paths, err := LoadScenarios(dir)
	if err != nil {
		return nil, err
	}

	suite := &SuiteResult{Results: make(map[string]*Result, len(scenarios))}
	for i, s := range scenarios {
		suite.Total++

		result, err := RunContext(ctx, s, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result = NewResult()
			result.AddError(err.Error())
		}
		suite.Results[s.Name] = result

		if result.Pass {
			suite.Passed++
			continue
		}
		suite.Failed++
		suite.Failures = append(suite.Failures, ScenarioFailure{
			Scenario: s.Name,
			Path:     paths[i],
			Errors:   result.Errors,
		})
	}
	return suite, nil
}
