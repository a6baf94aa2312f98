package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qopt/internal/optimize"
)

// Scenario is one semantic-equivalence check: a plan, the dataset it is
// evaluated against, the policy it is optimized under, and what the
// optimized plan is expected to look like.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Dataset is a (dataset ...) form.
	Dataset string `yaml:"dataset"`

	// Plan is the unoptimized plan.
	Plan string `yaml:"plan"`

	// Policy overrides the default policy.
	Policy *PolicySpec `yaml:"policy,omitempty"`

	// Expect holds checks on the optimized plan. Solution equivalence
	// is always checked.
	Expect Expectation `yaml:"expect,omitempty"`
}

// PolicySpec is the YAML form of an optimizer policy.
type PolicySpec struct {
	Rules  map[string]string `yaml:"rules,omitempty"`
	Params struct {
		TopNLimit        *int64 `yaml:"topNLimit,omitempty"`
		PlaceBGPs        *bool  `yaml:"placeBGPs,omitempty"`
		AggressiveInline *bool  `yaml:"aggressiveInline,omitempty"`
		AssumeProjected  *bool  `yaml:"assumeProjected,omitempty"`
	} `yaml:"params,omitempty"`
}

// Expectation lists checks on a run.
type Expectation struct {
	// Plan is the exact single-line form of the optimized plan.
	Plan string `yaml:"plan,omitempty"`

	// Fired names rules that must rewrite the plan.
	Fired []string `yaml:"fired,omitempty"`

	// NotFired names rules that must leave the plan alone.
	NotFired []string `yaml:"not_fired,omitempty"`

	// Solutions is the expected number of solutions, when set.
	Solutions *int `yaml:"solutions,omitempty"`

	// Unchanged requires the optimizer to return the plan as given.
	Unchanged bool `yaml:"unchanged,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, in name order.
func LoadScenarios(dir string) ([]*Scenario, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, paths, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if s.Plan == "" {
		return fmt.Errorf("plan is required")
	}
	if _, err := s.policy(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	known := map[string]bool{}
	for _, r := range optimize.Rules() {
		known[r.Name] = true
	}
	for i, name := range s.Expect.Fired {
		if !known[name] {
			return fmt.Errorf("expect.fired[%d]: unknown rule %q", i, name)
		}
	}
	for i, name := range s.Expect.NotFired {
		if !known[name] {
			return fmt.Errorf("expect.not_fired[%d]: unknown rule %q", i, name)
		}
	}
	if s.Expect.Solutions != nil && *s.Expect.Solutions < 0 {
		return fmt.Errorf("expect.solutions must be non-negative")
	}
	return nil
}

// policy builds the optimizer policy the scenario runs under.
func (s *Scenario) policy() (optimize.Policy, error) {
	policy := optimize.DefaultPolicy()
	if s.Policy == nil {
		return policy, nil
	}

	for name, raw := range s.Policy.Rules {
		setting, err := optimize.ParseSetting(raw)
		if err != nil {
			return optimize.Policy{}, fmt.Errorf("rule %s: %w", name, err)
		}
		policy = policy.Set(name, setting)
	}

	pp := s.Policy.Params
	if pp.TopNLimit != nil {
		policy.Params.TopNLimit = *pp.TopNLimit
	}
	if pp.PlaceBGPs != nil {
		policy.Params.PlaceBGPs = *pp.PlaceBGPs
	}
	if pp.AggressiveInline != nil {
		policy.Params.AggressiveInline = *pp.AggressiveInline
	}
	if pp.AssumeProjected != nil {
		policy.Params.AssumeProjected = *pp.AssumeProjected
	}

	if err := policy.Validate(); err != nil {
		return optimize.Policy{}, err
	}
	return policy, nil
}
