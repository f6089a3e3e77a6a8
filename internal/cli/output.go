package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/eigenview/internal/typedesc"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Every requested value rendered
	ExitFailure      = 1 // At least one value had no printer or failed to decode
	ExitCommandError = 2 // The command itself failed (snapshot, store, flags)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeSnapshotLoad  = "E002" // Snapshot document unreadable or invalid
	ErrCodeMaterialize   = "E003" // Snapshot could not be laid out in memory
	ErrCodeValueNotFound = "E004" // Named value not in the snapshot
	ErrCodeNoPrinter     = "E005" // No printer applies to the value
	ErrCodeRenderFailed  = "E006" // Printer failed while reading the value
	ErrCodeStore         = "E007" // Snapshot store error
	ErrCodeNoDatabase    = "E008" // Command needs --db
)

// exitCodes maps each error code to the exit status it implies. Per-value
// codes exit with ExitFailure; anything that stops the command exits with
// ExitCommandError.
var exitCodes = map[string]int{
	ErrCodeGeneric:       ExitCommandError,
	ErrCodeSnapshotLoad:  ExitCommandError,
	ErrCodeMaterialize:   ExitCommandError,
	ErrCodeValueNotFound: ExitFailure,
	ErrCodeNoPrinter:     ExitFailure,
	ErrCodeRenderFailed:  ExitFailure,
	ErrCodeStore:         ExitCommandError,
	ErrCodeNoDatabase:    ExitCommandError,
}

// ExitCodeFor returns the exit status for an error code.
func ExitCodeFor(code string) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitCommandError
}

// ExitError ends a command with a specific exit status. By the time one is
// returned the failure has already been written to the command's output.
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

func (e *ExitError) Unwrap() error { return e.Err }

// valuesFailed is returned by render when some values could not be shown.
func valuesFailed(n int) *ExitError {
	return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d value(s) could not be rendered", n)}
}

// GetExitCode returns the exit status for err: ExitSuccess for nil, the
// carried code for an ExitError, ExitFailure otherwise.
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

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status  string    `json:"status"` // "ok" or "error"
	Data    any       `json:"data,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
	TraceID string    `json:"trace_id,omitempty"`
}

// CLIError describes a command failure.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Reason is the decode error code (for example INVALID_DIMENSION)
	// when the failure came from decoding a value.
	Reason string `json:"reason,omitempty"`

	// Cause is the underlying error text.
	Cause string `json:"cause,omitempty"`
}

// newCLIError builds the error record for code, pulling the decode reason
// out of err's chain.
func newCLIError(code, message string, err error) *CLIError {
	e := &CLIError{Code: code, Message: message}
	if err != nil {
		e.Reason = string(typedesc.CodeOf(err))
		e.Cause = err.Error()
	}
	return e
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Verbose notes; keeps JSON on Writer parseable
	Verbose   bool
	TraceID   string
}

// Success writes a result. Text output uses the result's String method
// when it has one.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data, TraceID: f.TraceID})
	}
	if s, ok := data.(fmt.Stringer); ok {
		_, err := io.WriteString(f.Writer, s.String())
		return err
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Fail reports a failure with the given error code and returns the
// ExitError that ends the command.
func (f *OutputFormatter) Fail(code, message string, err error) error {
	e := newCLIError(code, message, err)
	if f.Format == "json" {
		if werr := f.encode(CLIResponse{Status: "error", Error: e, TraceID: f.TraceID}); werr != nil {
			return werr
		}
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
		if f.Verbose && e.Cause != "" {
			fmt.Fprintf(f.Writer, "Details: %s\n", e.Cause)
		}
		if f.Verbose && e.Reason != "" {
			fmt.Fprintf(f.Writer, "Reason: %s\n", e.Reason)
		}
	}
	return &ExitError{Code: ExitCodeFor(code), Message: message, Err: err}
}

// Verbosef writes a diagnostic line when verbose output is enabled.
func (f *OutputFormatter) Verbosef(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}
