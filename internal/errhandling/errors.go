// Package errhandling provides error types and classification utilities.
// Categories help the runtime and CLI report failures consistently: a parse
// failure in an event file, a bad selector expression, and a missing output
// directory all surface with a category a user can act on.
package errhandling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ptflow/runtime/internal/event"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryIO represents file system errors (missing event file,
	// unwritable plot path). Whether these are transient depends on the
	// environment; the runtime treats them as fatal for a one-shot batch.
	CategoryIO ErrorCategory = "io"

	// CategoryParse represents malformed input data (bad JSON line in an
	// event file, bad config syntax). Fatal: the data must be fixed.
	CategoryParse ErrorCategory = "parse"

	// CategoryExpression represents selector expression or script failures
	// (bad syntax, evaluation error). Fatal: the pipeline must be fixed.
	CategoryExpression ErrorCategory = "expression"

	// CategoryValidation represents invariant violations in the data or
	// configuration (column length mismatch, bad histogram range). Fatal.
	CategoryValidation ErrorCategory = "validation"

	// CategoryCanceled represents user-initiated cancellation.
	CategoryCanceled ErrorCategory = "canceled"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Fatal indicates the error cannot be resolved by re-running
	// unchanged (bad data, bad config, bad expression).
	Fatal bool

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// ExpressionError is implemented by module error types that carry an
// expression or script error code (selector expr/script modules).
type ExpressionError interface {
	error
	ExpressionErrorCode() string
}

// ClassifyError classifies an arbitrary error into a category.
//
// Classification rules, in order:
//   - already-classified errors pass through
//   - context cancellation / deadline: canceled
//   - event column length mismatch: validation
//   - expression/script module errors: expression
//   - JSON syntax/type errors: parse
//   - file system errors: io
//   - everything else: unknown
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{Category: CategoryUnknown, Message: "nil error"}
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{
			Category:    CategoryCanceled,
			Fatal:       false,
			Message:     "execution canceled",
			OriginalErr: err,
		}
	}

	var lenErr *event.LengthMismatchError
	if errors.As(err, &lenErr) {
		return &ClassifiedError{
			Category:    CategoryValidation,
			Fatal:       true,
			Message:     lenErr.Error(),
			OriginalErr: err,
		}
	}

	var exprErr ExpressionError
	if errors.As(err, &exprErr) {
		return &ClassifiedError{
			Category:    CategoryExpression,
			Fatal:       true,
			Message:     exprErr.Error(),
			OriginalErr: err,
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &ClassifiedError{
			Category:    CategoryParse,
			Fatal:       true,
			Message:     err.Error(),
			OriginalErr: err,
		}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &ClassifiedError{
			Category:    CategoryIO,
			Fatal:       true,
			Message:     fmt.Sprintf("file error: %s %s", pathErr.Op, pathErr.Path),
			OriginalErr: err,
		}
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Fatal:       true,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// IsFatal reports whether the error cannot be resolved by re-running
// the pipeline unchanged.
func IsFatal(err error) bool {
	return ClassifyError(err).Fatal
}

// Wrap attaches a category to an error explicitly.
func Wrap(category ErrorCategory, err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Category:    category,
		Fatal:       category != CategoryCanceled,
		Message:     err.Error(),
		OriginalErr: err,
	}
}
