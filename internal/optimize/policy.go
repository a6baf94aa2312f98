package optimize

import (
	"fmt"
	"maps"
	"strings"
)

// Setting is the tri-state enablement of one rule.
type Setting int

const (
	// Default uses the rule's built-in enablement.
	Default Setting = iota
	// On forces the rule on.
	On
	// Off forces the rule off.
	Off
)

// String returns the configuration spelling ("default", "on", "off").
func (s Setting) String() string {
	switch s {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "default"
	}
}

// ParseSetting reads "on", "off", or "default" (case-insensitive).
func ParseSetting(s string) (Setting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on":
		return On, nil
	case "off":
		return Off, nil
	case "default", "":
		return Default, nil
	default:
		return Default, fmt.Errorf("invalid rule setting %q: want on, off or default", s)
	}
}

// DefaultTopNLimit is the largest offset+length fused into a Top node.
const DefaultTopNLimit int64 = 1000

// Params are the rule parameters a policy carries.
type Params struct {
	// TopNLimit bounds offset+length for top-n fusion. Windows at or
	// above the limit stay as Slice over Order.
	TopNLimit int64

	// PlaceBGPs lets filter placement split a Pattern into a Sequence so
	// a filter lands right after the shortest covering prefix. When
	// false a Pattern is only wrapped.
	PlaceBGPs bool

	// AggressiveInline lets assignment elimination inline non-constant
	// expressions into Order and Top conditions.
	AggressiveInline bool

	// AssumeProjected treats the root of the plan as if it sat under a
	// projection that exports none of its Extend/Assign variables, so
	// assignment elimination may run there.
	AssumeProjected bool
}

// DefaultParams returns the built-in parameters.
func DefaultParams() Params {
	return Params{
		TopNLimit: DefaultTopNLimit,
		PlaceBGPs: true,
	}
}

// Policy selects which rules run and with what parameters. A rule with
// no entry in Rules uses its built-in default.
type Policy struct {
	Rules  map[string]Setting
	Params Params
}

// DefaultPolicy returns a policy with no overrides and default params.
func DefaultPolicy() Policy {
	return Policy{Rules: map[string]Setting{}, Params: DefaultParams()}
}

// Set returns a copy of p with the rule forced to s.
func (p Policy) Set(rule string, s Setting) Policy {
	out := p.Clone()
	out.Rules[rule] = s
	return out
}

// Clone returns a deep copy of p.
func (p Policy) Clone() Policy {
	rules := make(map[string]Setting, len(p.Rules))
	maps.Copy(rules, p.Rules)
	return Policy{Rules: rules, Params: p.Params}
}

// Enabled reports whether the named rule runs under p.
func (p Policy) Enabled(r Rule) bool {
	switch p.Rules[r.Name] {
	case On:
		return true
	case Off:
		return false
	default:
		return r.DefaultOn
	}
}

// Validate checks that every rule named in p exists and that the params
// are in range.
func (p Policy) Validate() error {
	for name := range p.Rules {
		if _, ok := lookup(name); !ok {
			return fmt.Errorf("unknown rule %q", name)
		}
	}
	if p.Params.TopNLimit < 0 {
		return fmt.Errorf("topNLimit must not be negative, got %d", p.Params.TopNLimit)
	}
	return nil
}
