package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

// Execution stages reported in error results.
const (
	StageTempFile      = "temp_file"
	StageEvalcFallback = "evalc_fallback"
)

// ExecResult is the outcome of a successful code execution.
type ExecResult struct {
	// Output is the success message (temp-file tier) or the captured
	// command-window output (evalc tier).
	Output string

	// Stage is the execution tier that succeeded.
	Stage string
}

// ExecuteCode runs arbitrary MATLAB code in the session using the two-tier
// strategy: write the code to a temporary .m file and run it (more robust
// for multi-line scripts and function definitions), and if MATLAB rejects
// the script, fall back to evalc so the output of a partial or interactive
// execution can still be captured.
//
// The temporary file is always removed. Errors are returned as:
//   - *errors.ExecError with Stage set when both tiers fail in MATLAB
//   - *errors.EngineConnError for session transport failures
//   - wrapped *os.PathError for temp-file IO failures
func (e *Engine) ExecuteCode(ctx context.Context, code string) (*ExecResult, error) {
	tmp, err := os.CreateTemp("", "mcprun_*.m")
	if err != nil {
		return nil, fmt.Errorf("create temp script: %w", err)
	}

	path := tmp.Name()

	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			e.log.Warn("Could not clean up temporary script", "path", path, "error", rmErr)
		}
	}()

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()

		return nil, fmt.Errorf("write temp script: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp script: %w", err)
	}

	e.log.Debug("Attempting execution via temporary file", "path", path)

	runErr := e.Run(ctx, path)
	if runErr == nil {
		e.log.Info("Code executed via temporary file", "path", path)

		return &ExecResult{
			Output: fmt.Sprintf("Code executed successfully via temporary file (%s).", filepath.Base(path)),
			Stage:  StageTempFile,
		}, nil
	}

	var execErr *errors.ExecError
	if !stderrors.As(runErr, &execErr) {
		// Transport failure or cancellation, not a MATLAB error: the
		// fallback would fail the same way.
		return nil, runErr
	}

	e.log.Warn("Temporary file execution failed, falling back to evalc", "error", runErr)

	output, evalErr := e.Evalc(ctx, code)
	if evalErr == nil {
		e.log.Info("Code executed via evalc fallback")

		return &ExecResult{Output: output, Stage: StageEvalcFallback}, nil
	}

	var fallbackErr *errors.ExecError
	if stderrors.As(evalErr, &fallbackErr) {
		return nil, &errors.ExecError{
			Identifier: fallbackErr.Identifier,
			Message:    fmt.Sprintf("MATLAB execution failed (tried temp file then evalc): %s", fallbackErr.Message),
			Stage:      StageEvalcFallback,
		}
	}

	return nil, evalErr
}
