package config

import (
	"fmt"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/roach88/qopt/internal/optimize"
)

// Environment variable names.
const (
	EnvTopNLimit        = "QOPT_TOPN_LIMIT"
	EnvPlaceBGPs        = "QOPT_PLACE_BGPS"
	EnvAggressiveInline = "QOPT_AGGRESSIVE_INLINE"
	EnvAssumeProjected  = "QOPT_ASSUME_PROJECTED"
	EnvDisable          = "QOPT_DISABLE"
)

// ApplyEnv returns policy with the QOPT_* environment overrides applied.
// A QOPT_TOPN_LIMIT that is not a non-negative integer keeps the
// policy's limit. QOPT_DISABLE must name known rules.
func ApplyEnv(policy optimize.Policy) (optimize.Policy, error) {
	out := policy.Clone()
	p := &out.Params

	if env.Has(EnvTopNLimit) {
		if n := env.Int(EnvTopNLimit, int(p.TopNLimit)); n >= 0 {
			p.TopNLimit = int64(n)
		}
	}
	if env.Has(EnvPlaceBGPs) {
		p.PlaceBGPs = env.Bool(EnvPlaceBGPs)
	}
	if env.Has(EnvAggressiveInline) {
		p.AggressiveInline = env.Bool(EnvAggressiveInline)
	}
	if env.Has(EnvAssumeProjected) {
		p.AssumeProjected = env.Bool(EnvAssumeProjected)
	}

	known := ruleNames()
	for _, name := range strings.Split(env.Str(EnvDisable), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !known[name] {
			return optimize.Policy{}, &LoadError{
				Code:    CodeEnv,
				Message: fmt.Sprintf("%s: unknown rule %q", EnvDisable, name),
			}
		}
		out = out.Set(name, optimize.Off)
	}
	return out, nil
}

// LoadWithEnv loads path (or the default policy) and applies the
// environment on top.
func LoadWithEnv(path string) (optimize.Policy, error) {
	policy, err := Load(path)
	if err != nil {
		return optimize.Policy{}, err
	}
	return ApplyEnv(policy)
}
