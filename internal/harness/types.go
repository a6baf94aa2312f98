package harness

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when the optimized plan returns the same solutions
	// and every expectation holds.
	Pass bool `json:"pass"`

	// Original and Optimized are the single-line plan forms.
	Original  string `json:"original"`
	Optimized string `json:"optimized"`

	// Fingerprint is the hex fingerprint of the optimized plan.
	Fingerprint string `json:"fingerprint"`

	// Fired lists the rules that rewrote the plan, in pipeline order.
	Fired []string `json:"fired"`

	// Solutions is the number of solutions the optimized plan returns.
	Solutions int `json:"solutions"`

	// Ordered is true when solutions were compared as sequences.
	Ordered bool `json:"ordered"`

	// Errors explains each failed check. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Fired:  []string{},
		Errors: []string{},
	}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
