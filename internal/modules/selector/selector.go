// Package selector provides implementations for candidate selector modules.
// A selector walks the events produced by a source, keeps the candidates
// whose energy passes the cut and computes the transverse momentum
// pt = sqrt(px^2 + py^2) of each survivor. All variants produce the same
// flattened, order-preserving pt slice for the same input.
package selector

import (
	"context"
	"fmt"

	"github.com/ptflow/runtime/internal/event"
)

// DefaultThreshold is the energy cut applied when the configuration does
// not override it.
const DefaultThreshold = 100.0

// Error codes for selector modules
const (
	ErrCodeInvalidThreshold = "SELECTOR_INVALID_THRESHOLD"
	ErrCodeFrameFailed      = "FRAME_OPERATION_FAILED"
	ErrCodeEvaluationFailed = "EVALUATION_FAILED"
)

// Module is the interface all selector modules implement.
// Process consumes whole events and returns the pt values of the selected
// candidates, flattened across events in input order.
type Module interface {
	Process(ctx context.Context, events []event.Event) ([]float64, error)
}

// SelectorError carries structured context for selector failures.
type SelectorError struct {
	Code       string
	Message    string
	EventIndex int
}

func (e *SelectorError) Error() string {
	return e.Message
}

// newSelectorError creates a SelectorError with event context.
func newSelectorError(code, message string, eventIdx int) *SelectorError {
	return &SelectorError{
		Code:       code,
		Message:    message,
		EventIndex: eventIdx,
	}
}

// thresholdFromConfig extracts the energy cut from raw configuration.
// Numbers may arrive as int or float64 depending on whether the config
// was JSON or YAML; both are accepted. Absent means DefaultThreshold.
func thresholdFromConfig(config map[string]interface{}) (float64, error) {
	v, ok := config["threshold"]
	if !ok || v == nil {
		return DefaultThreshold, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, newSelectorError(ErrCodeInvalidThreshold,
		fmt.Sprintf("threshold must be a number, got %T", v), -1)
}

// stringFromConfig extracts an optional string option from raw configuration.
func stringFromConfig(config map[string]interface{}, key string) (string, error) {
	v, ok := config[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}
