package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/optimize"
)

func TestApplyEnv(t *testing.T) {
	testCases := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, p optimize.Policy)
	}{
		{
			name: "nothing set",
			check: func(t *testing.T, p optimize.Policy) {
				assert.Equal(t, optimize.DefaultPolicy(), p)
			},
		},
		{
			name: "top n limit",
			env:  map[string]string{EnvTopNLimit: "25"},
			check: func(t *testing.T, p optimize.Policy) {
				assert.Equal(t, int64(25), p.Params.TopNLimit)
			},
		},
		{
			name: "unparsable limit keeps default",
			env:  map[string]string{EnvTopNLimit: "lots"},
			check: func(t *testing.T, p optimize.Policy) {
				assert.Equal(t, optimize.DefaultTopNLimit, p.Params.TopNLimit)
			},
		},
		{
			name: "negative limit keeps default",
			env:  map[string]string{EnvTopNLimit: "-5"},
			check: func(t *testing.T, p optimize.Policy) {
				assert.Equal(t, optimize.DefaultTopNLimit, p.Params.TopNLimit)
			},
		},
		{
			name: "booleans",
			env: map[string]string{
				EnvPlaceBGPs:        "false",
				EnvAggressiveInline: "true",
				EnvAssumeProjected:  "1",
			},
			check: func(t *testing.T, p optimize.Policy) {
				assert.False(t, p.Params.PlaceBGPs)
				assert.True(t, p.Params.AggressiveInline)
				assert.True(t, p.Params.AssumeProjected)
			},
		},
		{
			name: "disable list",
			env:  map[string]string{EnvDisable: "top-n, filter-placement,,"},
			check: func(t *testing.T, p optimize.Policy) {
				assert.Equal(t, optimize.Off, p.Rules["top-n"])
				assert.Equal(t, optimize.Off, p.Rules["filter-placement"])
				assert.Len(t, p.Rules, 2)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			p, err := ApplyEnv(optimize.DefaultPolicy())
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestApplyEnv_UnknownRule(t *testing.T) {
	t.Setenv(EnvDisable, "top-n,bogus")

	_, err := ApplyEnv(optimize.DefaultPolicy())
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, CodeEnv, le.Code)
	assert.Contains(t, le.Message, "bogus")
}

func TestApplyEnv_DoesNotMutateInput(t *testing.T) {
	t.Setenv(EnvDisable, "top-n")

	base := optimize.DefaultPolicy()
	_, err := ApplyEnv(base)
	require.NoError(t, err)
	assert.Empty(t, base.Rules)
}

func TestLoadWithEnv(t *testing.T) {
	path := writePolicy(t, "params: topNLimit: 10\n")
	t.Setenv(EnvTopNLimit, "20")

	p, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.Params.TopNLimit)
}
