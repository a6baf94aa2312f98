package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/optimize"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// OptimizeOptions holds flags for the optimize command.
type OptimizeOptions struct {
	*RootOptions
	Rules   []string // run only these rules, in this order
	Config  string   // policy file
	Pretty  bool     // indented plan output
	Metrics bool     // dump rule metrics to stderr
}

// OptimizeResult is the payload of the optimize command.
type OptimizeResult struct {
	Plan        string   `json:"plan"`
	Fingerprint string   `json:"fingerprint"`
	Changed     bool     `json:"changed"`
	Rules       []string `json:"rules"`
}

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OptimizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "optimize [plan-file]",
		Short: "Optimize a plan",
		Long: `Optimize a plan read from a file, or from stdin when no file is given.

By default the full rule pipeline runs under the policy from --config
(and QOPT_* environment overrides). With --rule, only the named rules
run, in the order given.

Exit codes:
  0 - Plan optimized
  2 - Command error (unreadable or unparsable plan, bad config, unknown rule)

Examples:
  qopt optimize plan.sse
  qopt optimize --rule filter-placement --rule top-n plan.sse
  echo '(slice _ 5 (order (?x) (bgp (?x ?p ?o))))' | qopt optimize --pretty`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(opts, cmd, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Rules, "rule", nil, "run only this rule (repeatable)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "policy file (CUE)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "indent the output plan")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "write rule metrics to stderr")

	return cmd
}

func runOptimize(opts *OptimizeOptions, cmd *cobra.Command, args []string) error {
	formatter := opts.formatter(cmd)

	plan, err := readPlan(cmd, args)
	if err != nil {
		return failInput(formatter, err)
	}
	policy, err := loadPolicy(opts.Config)
	if err != nil {
		return failInput(formatter, err)
	}

	reg := prometheus.NewRegistry()
	var out queryir.Op
	var ran []string
	if len(opts.Rules) > 0 {
		out = plan
		for _, name := range opts.Rules {
			out, err = optimize.Apply(name, out, policy.Params)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeUnknownRule, err.Error(), nil)
			}
		}
		ran = opts.Rules
	} else {
		opt := optimize.New(policy,
			optimize.WithLogger(opts.logger(cmd)),
			optimize.WithMetrics(optimize.NewMetrics(reg)),
		)
		out = opt.Optimize(cmd.Context(), plan)
		ran = opt.Enabled()
	}

	if opts.Metrics {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing metrics: %v", err), nil)
		}
	}

	text := sse.Format(out)
	if opts.Pretty {
		text = sse.Pretty(out)
	}

	if opts.Format == "json" {
		return formatter.Success(OptimizeResult{
			Plan:        text,
			Fingerprint: queryir.FingerprintHex(out),
			Changed:     !queryir.Equal(plan, out),
			Rules:       ran,
		})
	}
	formatter.VerboseLog("rules: %v", ran)
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
