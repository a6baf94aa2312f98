package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qopt/internal/optimize"
)

//go:embed schema.cue
var schemaCUE string

// Error codes carried by LoadError.
const (
	CodeNotFound    = "CONFIG_NOT_FOUND"
	CodeInvalid     = "CONFIG_INVALID"
	CodeUnknownRule = "UNKNOWN_RULE"
	CodeEnv         = "ENV_INVALID"
)

// LoadError is a policy that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// policyFile is the decoded form of a #Policy value.
type policyFile struct {
	Rules  map[string]string `json:"rules"`
	Params struct {
		TopNLimit        *int64 `json:"topNLimit"`
		PlaceBGPs        *bool  `json:"placeBGPs"`
		AggressiveInline *bool  `json:"aggressiveInline"`
		AssumeProjected  *bool  `json:"assumeProjected"`
	} `json:"params"`
}

// Load reads a policy file. An empty path yields the default policy.
func Load(path string) (optimize.Policy, error) {
	if path == "" {
		return optimize.DefaultPolicy(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return optimize.Policy{}, &LoadError{Code: CodeNotFound, Message: fmt.Sprintf("reading policy: %v", err)}
	}
	return Parse(src, path)
}

// Parse builds a policy from CUE source. filename is used in positions.
func Parse(src []byte, filename string) (optimize.Policy, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return optimize.Policy{}, fmt.Errorf("compiling embedded schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return optimize.Policy{}, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Policy")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return optimize.Policy{}, formatCUEError(err)
	}

	var file policyFile
	if err := unified.Decode(&file); err != nil {
		return optimize.Policy{}, formatCUEError(err)
	}

	policy := optimize.DefaultPolicy()
	names := make([]string, 0, len(file.Rules))
	for name := range file.Rules {
		names = append(names, name)
	}
	slices.Sort(names)
	known := ruleNames()
	for _, name := range names {
		pos := v.LookupPath(cue.MakePath(cue.Str("rules"), cue.Str(name))).Pos()
		if !known[name] {
			return optimize.Policy{}, &LoadError{
				Code:    CodeUnknownRule,
				Message: fmt.Sprintf("unknown rule %q", name),
				Pos:     pos,
			}
		}
		setting, err := optimize.ParseSetting(file.Rules[name])
		if err != nil {
			return optimize.Policy{}, &LoadError{Code: CodeInvalid, Message: err.Error(), Pos: pos}
		}
		policy = policy.Set(name, setting)
	}

	p := &policy.Params
	if file.Params.TopNLimit != nil {
		p.TopNLimit = *file.Params.TopNLimit
	}
	if file.Params.PlaceBGPs != nil {
		p.PlaceBGPs = *file.Params.PlaceBGPs
	}
	if file.Params.AggressiveInline != nil {
		p.AggressiveInline = *file.Params.AggressiveInline
	}
	if file.Params.AssumeProjected != nil {
		p.AssumeProjected = *file.Params.AssumeProjected
	}

	if err := policy.Validate(); err != nil {
		return optimize.Policy{}, &LoadError{Code: CodeInvalid, Message: err.Error()}
	}
	return policy, nil
}

func ruleNames() map[string]bool {
	out := map[string]bool{}
	for _, r := range optimize.Rules() {
		out[r.Name] = true
	}
	return out
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: CodeInvalid, Message: err.Error()}
	}

	first := errs[0]
	var pos token.Pos
	if positions := errors.Positions(first); len(positions) > 0 {
		pos = positions[0]
	}
	return &LoadError{Code: CodeInvalid, Message: first.Error(), Pos: pos}
}
