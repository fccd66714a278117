package cli

import (
	"errors"
	"fmt"
	"io"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
	// Silent errors have already been reported on stdout.
	Silent bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError returns an error that will cause the CLI to exit with the given code
func exitError(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// silentExit exits with code without printing anything more.
func silentExit(code int) error {
	return &ExitError{Code: code, Silent: true}
}

// ReportError prints err to w unless it is silent and returns the exit
// code the process should use.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Silent {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		if exitErr.Code != 0 {
			return exitErr.Code
		}
		return 1
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
