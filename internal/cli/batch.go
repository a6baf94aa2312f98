package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/roach88/qopt/internal/optimize"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// manifestSchema is the JSON Schema every batch manifest must satisfy.
const manifestSchema = `{
  "type": "object",
  "required": ["plans"],
  "additionalProperties": false,
  "properties": {
    "workers": {"type": "integer", "minimum": 1},
    "plans": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["plan"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "plan": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// Manifest lists the plans of one batch run.
type Manifest struct {
	Workers int             `json:"workers,omitempty"`
	Plans   []ManifestEntry `json:"plans"`
}

// ManifestEntry is one plan to optimize. A missing ID is generated.
type ManifestEntry struct {
	ID   string `json:"id,omitempty"`
	Plan string `json:"plan"`
}

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Workers int    // overrides the manifest's worker count
	Config  string // policy file
	Metrics bool   // dump rule metrics to stderr
}

// JobResult is the outcome of one manifest entry.
type JobResult struct {
	ID          string `json:"id"`
	Plan        string `json:"plan,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Changed     bool   `json:"changed"`
	DuplicateOf string `json:"duplicate_of,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchResult is the payload of the batch command.
type BatchResult struct {
	Jobs       []JobResult `json:"jobs"`
	Total      int         `json:"total"`
	Optimized  int         `json:"optimized"`
	Duplicates int         `json:"duplicates"`
	Failed     int         `json:"failed"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <manifest.json>",
		Short: "Optimize many plans in parallel",
		Long: `Optimize every plan listed in a JSON manifest on a worker pool.

The manifest is {"workers": N, "plans": [{"id": "...", "plan": "..."}]}.
Plans with the same fingerprint are optimized once; later copies are
reported as duplicates of the first. Results keep manifest order.

Exit codes:
  0 - Every plan optimized
  1 - One or more plans failed to parse or optimize
  2 - Command error (unreadable or invalid manifest, bad config)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker count (default: manifest value or CPU count)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "policy file (CUE)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "write rule metrics to stderr")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, os.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return formatter.Fail(ExitCommandError, code, fmt.Sprintf("reading manifest: %v", err), nil)
	}
	manifest, problems, err := parseManifest(data)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeManifest, err.Error(), problems)
	}
	policy, err := loadPolicy(opts.Config)
	if err != nil {
		return failInput(formatter, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = manifest.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	reg := prometheus.NewRegistry()
	opt := optimize.New(policy,
		optimize.WithLogger(logger),
		optimize.WithMetrics(optimize.NewMetrics(reg)),
	)

	result, err := optimizeAll(cmd.Context(), logger, opt, manifest, workers, opts.NewID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	logger.Info("batch finished",
		"total", result.Total,
		"optimized", result.Optimized,
		"duplicates", result.Duplicates,
		"failed", result.Failed,
		"workers", workers,
	)

	if opts.Metrics {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing metrics: %v", err), nil)
		}
	}

	failedMsg := fmt.Sprintf("%d plan(s) failed", result.Failed)
	if opts.Format == "json" {
		if result.Failed > 0 {
			if err := formatter.Partial(result, ErrCodeJobFailed, failedMsg); err != nil {
				return err
			}
			return NewExitError(ExitFailure, failedMsg)
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, j := range result.Jobs {
		switch {
		case j.Error != "":
			fmt.Fprintf(w, "✗ %s: %s\n", j.ID, j.Error)
		case j.DuplicateOf != "":
			fmt.Fprintf(w, "= %s: duplicate of %s\n", j.ID, j.DuplicateOf)
		default:
			fmt.Fprintf(w, "✓ %s: %s\n", j.ID, j.Plan)
		}
	}
	fmt.Fprintf(w, "\nBatch Summary: %d optimized, %d duplicate, %d failed, %d total\n",
		result.Optimized, result.Duplicates, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, failedMsg)
	}
	return nil
}

// parseManifest validates data against the manifest schema and decodes
// it. On a schema violation the second result lists each problem.
func parseManifest(data []byte) (*Manifest, []string, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(manifestSchema))
	if err != nil {
		return nil, nil, fmt.Errorf("compiling manifest schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	if !res.Valid() {
		var problems []string
		for _, e := range res.Errors() {
			problems = append(problems, e.String())
		}
		return nil, problems, fmt.Errorf("manifest does not match schema: %s", strings.Join(problems, "; "))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil, nil
}

// planIndex maps a plan fingerprint to the manifest positions of the
// distinct plans that hash to it.
type planIndex map[uint64][]int

// lookup returns the position of an earlier plan equal to op. Equal
// fingerprints alone are not trusted.
func (x planIndex) lookup(fp uint64, op queryir.Op, plans []queryir.Op) (int, bool) {
	for _, i := range x[fp] {
		if queryir.Equal(plans[i], op) {
			return i, true
		}
	}
	return 0, false
}

// optimizeAll runs every manifest entry on an ants pool and returns the
// results in manifest order.
func optimizeAll(ctx context.Context, logger *slog.Logger, opt *optimize.Optimizer, m *Manifest, workers int, newID func() string) (*BatchResult, error) {
	jobs := make([]JobResult, len(m.Plans))
	plans := make([]queryir.Op, len(m.Plans))
	source := make([]int, len(m.Plans))
	index := planIndex{}
	var todo []int

	for i, entry := range m.Plans {
		id := entry.ID
		if id == "" {
			id = newID()
		}
		jobs[i].ID = id
		source[i] = i

		op, err := sse.ParseOp(entry.Plan)
		if err != nil {
			jobs[i].Error = err.Error()
			continue
		}
		fp := queryir.Fingerprint(op)
		if first, ok := index.lookup(fp, op, plans); ok {
			jobs[i].DuplicateOf = jobs[first].ID
			source[i] = first
			continue
		}
		index[fp] = append(index[fp], i)
		plans[i] = op
		todo = append(todo, i)
	}

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		logger.Error("optimizer panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, i := range todo {
		// Cleared on success; left set if the job panics.
		jobs[i].Error = "optimizer panicked"
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			out := opt.Optimize(ctx, plans[i])
			jobs[i].Plan = sse.Format(out)
			jobs[i].Fingerprint = queryir.FingerprintHex(out)
			jobs[i].Changed = !queryir.Equal(plans[i], out)
			jobs[i].Error = ""
		})
		if err != nil {
			wg.Done()
			jobs[i].Error = fmt.Sprintf("submitting job: %v", err)
		}
	}
	wg.Wait()

	// Duplicates share their first copy's output.
	for i := range jobs {
		first := source[i]
		if first == i {
			continue
		}
		jobs[i].Plan = jobs[first].Plan
		jobs[i].Fingerprint = jobs[first].Fingerprint
		jobs[i].Changed = jobs[first].Changed
		jobs[i].Error = jobs[first].Error
	}

	result := &BatchResult{Jobs: jobs, Total: len(jobs)}
	for _, j := range jobs {
		switch {
		case j.Error != "":
			result.Failed++
		case j.DuplicateOf != "":
			result.Duplicates++
		default:
			result.Optimized++
		}
	}
	return result, nil
}
