package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/optimize"
)

// RuleInfo describes one rule in the rules listing.
type RuleInfo struct {
	Position    int    `json:"position"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultOn   bool   `json:"default_on"`
	Enabled     bool   `json:"enabled"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rewrite rules in pipeline order",
		Long: `List every rewrite rule in the order the pipeline runs them, with
its built-in default and whether it is enabled under the policy from
--config and the QOPT_* environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(rootOpts, configPath, cmd)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "policy file (CUE)")
	return cmd
}

func runRules(opts *RootOptions, configPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	policy, err := loadPolicy(configPath)
	if err != nil {
		return failInput(formatter, err)
	}

	var infos []RuleInfo
	for i, r := range optimize.Rules() {
		infos = append(infos, RuleInfo{
			Position:    i + 1,
			Name:        r.Name,
			Description: r.Description,
			DefaultOn:   r.DefaultOn,
			Enabled:     policy.Enabled(r),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}

	w := cmd.OutOrStdout()
	for _, info := range infos {
		mark := " "
		if info.Enabled {
			mark = "✓"
		}
		fmt.Fprintf(w, "%2d %s %-22s %s\n", info.Position, mark, info.Name, info.Description)
	}
	return nil
}
