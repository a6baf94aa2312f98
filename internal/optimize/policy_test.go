package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetting(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    Setting
		wantErr bool
	}{
		{name: "on", input: "on", want: On},
		{name: "off upper case", input: "OFF", want: Off},
		{name: "default", input: "default", want: Default},
		{name: "empty is default", input: "", want: Default},
		{name: "padded", input: " on ", want: On},
		{name: "invalid", input: "yes", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSetting(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, mustParseSetting(t, got.String()))
		})
	}
}

func mustParseSetting(t *testing.T, s string) Setting {
	t.Helper()
	got, err := ParseSetting(s)
	require.NoError(t, err)
	return got
}

func TestPolicy_Set(t *testing.T) {
	base := DefaultPolicy()
	changed := base.Set(RuleTopN, Off)

	assert.Empty(t, base.Rules, "Set must not modify the receiver")
	assert.Equal(t, Off, changed.Rules[RuleTopN])

	clone := changed.Clone()
	clone.Rules[RuleTopN] = On
	assert.Equal(t, Off, changed.Rules[RuleTopN], "Clone must copy the rule map")
}

func TestPolicy_Enabled(t *testing.T) {
	onByDefault, _ := lookup(RuleFilterPlacement)
	offByDefault, _ := lookup(RuleJoinStrategy)

	testCases := []struct {
		name    string
		setting Setting
		rule    Rule
		want    bool
	}{
		{"default on", Default, onByDefault, true},
		{"default off", Default, offByDefault, false},
		{"forced off", Off, onByDefault, false},
		{"forced on", On, offByDefault, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPolicy().Set(tc.rule.Name, tc.setting)
			assert.Equal(t, tc.want, p.Enabled(tc.rule))
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		policy  Policy
		wantErr string
	}{
		{
			name:   "default",
			policy: DefaultPolicy(),
		},
		{
			name:   "known overrides",
			policy: DefaultPolicy().Set(RuleImplicitJoin, On).Set(RuleTopN, Off),
		},
		{
			name:    "unknown rule",
			policy:  DefaultPolicy().Set("push-everything", On),
			wantErr: `unknown rule "push-everything"`,
		},
		{
			name: "negative limit",
			policy: func() Policy {
				p := DefaultPolicy()
				p.Params.TopNLimit = -1
				return p
			}(),
			wantErr: "topNLimit must not be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.policy.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRules_Order(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 17)
	assert.Equal(t, RuleScopeRename, rules[0].Name)
	assert.Equal(t, RulePropagateEmpty, rules[len(rules)-1].Name)

	rules[0].Name = "changed"
	assert.Equal(t, RuleScopeRename, Rules()[0].Name, "Rules must return a copy")
}
