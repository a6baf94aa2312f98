package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qopt/internal/config"
	"github.com/roach88/qopt/internal/optimize"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// inputError is a failure to obtain a command's input, tagged with the
// response code to report.
type inputError struct {
	Code string
	Err  error
}

func (e *inputError) Error() string { return e.Err.Error() }

func (e *inputError) Unwrap() error { return e.Err }

// readPlan reads a plan from args[0], or from stdin when there is no
// argument or it is "-".
func readPlan(cmd *cobra.Command, args []string) (queryir.Op, error) {
	var (
		src []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(args[0])
	}
	if err != nil {
		code := ErrCodeReadFailed
		if errors.Is(err, os.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return nil, &inputError{Code: code, Err: fmt.Errorf("reading plan: %w", err)}
	}

	op, err := sse.ParseOp(string(src))
	if err != nil {
		return nil, &inputError{Code: ErrCodeParseFailed, Err: err}
	}
	return op, nil
}

// loadPolicy loads the policy file (if any) with environment overrides.
func loadPolicy(path string) (optimize.Policy, error) {
	policy, err := config.LoadWithEnv(path)
	if err != nil {
		return optimize.Policy{}, &inputError{Code: configErrorCode(err), Err: err}
	}
	return policy, nil
}

func configErrorCode(err error) string {
	var le *config.LoadError
	if errors.As(err, &le) {
		switch le.Code {
		case config.CodeNotFound:
			return ErrCodeNotFound
		case config.CodeUnknownRule:
			return ErrCodeUnknownRule
		}
	}
	return ErrCodeConfig
}

// failInput reports an input error as a command error.
func failInput(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var ie *inputError
	if errors.As(err, &ie) {
		code = ie.Code
	}
	return f.Fail(ExitCommandError, code, err.Error(), nil)
}
