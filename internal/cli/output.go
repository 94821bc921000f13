package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"calspan/internal/chrono"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed on valid arguments
	ExitCommandError = 2 // Bad arguments, flags or configuration
)

// ExitError carries the exit code a failed command should produce.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// inputError classifies err from the value packages. Malformed text is an
// argument problem; everything else is an operation failure.
func inputError(err error) error {
	if chrono.IsMalformedInput(err) || chrono.IsUnsupportedUnit(err) {
		return WrapExitError(ExitCommandError, "invalid argument", err)
	}
	return err
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *ErrorDTO `json:"error,omitempty"`
}

// ErrorDTO describes a failure in JSON output.
type ErrorDTO struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// Success writes data as a JSON envelope, or calls text for text output.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// WriteError renders err in JSON mode. Text mode leaves reporting to the
// caller of Execute.
func WriteError(w io.Writer, format string, err error) {
	if format != "json" {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(Response{
		Status: "error",
		Error:  &ErrorDTO{Kind: string(chrono.KindOf(err)), Message: err.Error()},
	})
}
