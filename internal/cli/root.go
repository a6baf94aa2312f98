package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// NewID generates invocation and batch job ids. Tests replace it.
	NewID func() string

	traceID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qopt CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{NewID: newUUID})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qopt",
		Short: "qopt - algebraic query-plan optimizer",
		Long: `Rewrite graph-pattern query plans into equivalent, cheaper plans.

Plans are read and written in s-expression form, for example
  (filter (= ?x 1) (bgp (?s ?p ?x)))`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.traceID = opts.NewID()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewOptimizeCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))

	return cmd
}

// formatter builds the output formatter for one command run.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		TraceID:   o.traceID,
	}
}

// logger logs to stderr: debug and up with --verbose, warnings otherwise.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("trace_id", o.traceID)
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
