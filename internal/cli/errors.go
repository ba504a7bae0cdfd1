// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ptflow/runtime/internal/config"
)

// PrintParseErrors prints parse errors to stderr.
func PrintParseErrors(errors []config.ParseError, verbose bool) {
	FprintParseErrors(os.Stderr, errors, verbose)
}

// FprintParseErrors prints parse errors to the given writer.
func FprintParseErrors(w io.Writer, errors []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Parse errors:")
	for _, err := range errors {
		location := formatErrorLocation(err.Path, err.Line, err.Column)
		if location != "" {
			fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", err.Message)
		}
		if verbose && err.Type != "" {
			fmt.Fprintf(w, "    Type: %s\n", err.Type)
		}
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}
	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints schema validation errors to stderr.
func PrintValidationErrors(errors []config.ValidationError, verbose, quiet bool) {
	FprintValidationErrors(os.Stderr, errors, verbose, quiet)
}

// FprintValidationErrors prints schema validation errors to the given writer.
func FprintValidationErrors(w io.Writer, errors []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(w, "✗ Validation errors:")
	for _, err := range errors {
		path := err.Path
		if path == "" {
			path = "/"
		}
		if verbose {
			fmt.Fprintf(w, "  %s:\n", path)
			fmt.Fprintf(w, "    Message: %s\n", err.Message)
			if err.Type != "" {
				fmt.Fprintf(w, "    Type: %s\n", err.Type)
			}
		} else {
			fmt.Fprintf(w, "  %s: %s\n", path, truncateMessage(err.Message, 80))
		}
	}
	if !quiet {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

func truncateMessage(message string, maxLen int) string {
	if len(message) <= maxLen {
		return message
	}
	return message[:maxLen-3] + "..."
}
