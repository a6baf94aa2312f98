package optimize

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/qopt/internal/queryir"
)

// Optimizer runs the enabled rules of a policy over plans.
//
// The policy is copied at construction, so later changes to the caller's
// Policy value never affect a running optimizer. An Optimizer holds no
// per-call state and is safe for concurrent use.
type Optimizer struct {
	policy  Policy
	rules   []Rule
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger for rule activity. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records rule activity in m.
func WithMetrics(m *Metrics) Option {
	return func(o *Optimizer) {
		o.metrics = m
	}
}

// New creates an Optimizer for policy. Rule names the registry does not
// know are ignored here; call Policy.Validate to reject them.
func New(policy Policy, opts ...Option) *Optimizer {
	o := &Optimizer{
		policy: policy.Clone(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, r := range registry {
		if o.policy.Enabled(r) {
			o.rules = append(o.rules, r)
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Policy returns a copy of the optimizer's policy.
func (o *Optimizer) Policy() Policy {
	return o.policy.Clone()
}

// Enabled returns the names of the rules this optimizer runs, in order.
func (o *Optimizer) Enabled() []string {
	names := make([]string, len(o.rules))
	for i, r := range o.rules {
		names[i] = r.Name
	}
	return names
}

// Optimize runs every enabled rule once, in pipeline order. If ctx is
// cancelled between two rules, the plan produced so far is returned.
func (o *Optimizer) Optimize(ctx context.Context, op queryir.Op) queryir.Op {
	start := time.Now()
	defer func() { o.metrics.observeDuration(time.Since(start).Seconds()) }()

	fp := queryir.Fingerprint(op)
	for _, r := range o.rules {
		if err := ctx.Err(); err != nil {
			o.logger.Debug("optimize interrupted", "rule", r.Name, "error", err)
			return op
		}

		next := r.apply(op, o.policy.Params)
		nextFP := queryir.Fingerprint(next)
		fired := nextFP != fp || !queryir.Equal(next, op)
		o.metrics.observeRule(r.Name, fired)
		if fired {
			o.logger.Debug("rule fired", "rule", r.Name, "fingerprint", queryir.FingerprintHex(next))
		}
		op, fp = next, nextFP
	}
	return op
}
