package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/table"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The API refused or lost a change
	ExitCommandError = 2 // Bad arguments, unknown fields, unreachable config
)

// ExitError carries the exit code a command should end with.
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

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
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

// output writes either a bordered table or a JSON document.
type output struct {
	format string
	w      io.Writer
}

func (o output) json() bool {
	return o.format == "json"
}

// data encodes v when the format is json and reports whether it did.
func (o output) data(v any) (bool, error) {
	if !o.json() {
		return false, nil
	}
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func (o output) table(headers []string, rows [][]string) {
	t := table.New().Headers(headers...).Rows(rows...)
	fmt.Fprintln(o.w, t.String())
}

func (o output) linef(format string, args ...any) {
	fmt.Fprintf(o.w, format+"\n", args...)
}
