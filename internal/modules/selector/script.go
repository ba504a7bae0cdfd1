// Package selector provides implementations for candidate selector modules.
// Script module delegates the selection to a user-provided JavaScript
// function executed with the Goja engine.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dop251/goja"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/internal/pathutil"
)

// Error codes for the script selector
const (
	ErrCodeScriptEmpty          = "SCRIPT_EMPTY"
	ErrCodeScriptTooLong        = "SCRIPT_TOO_LONG"
	ErrCodeCompilationFailed    = "COMPILATION_FAILED"
	ErrCodeMissingCandidateFn   = "MISSING_CANDIDATE_FUNCTION"
	ErrCodeNotFunction          = "NOT_FUNCTION"
	ErrCodeExecutionFailed      = "EXECUTION_FAILED"
	ErrCodeScriptResult         = "SCRIPT_RESULT_NOT_NUMERIC"
	ErrCodeInvalidScriptFile    = "INVALID_SCRIPT_FILE"
	ErrCodeScriptFileReadFailed = "SCRIPT_FILE_READ_FAILED"
)

// MaxScriptLength is the maximum allowed script length in bytes (100KB).
const MaxScriptLength = 100 * 1024

// DefaultScript reproduces the standard selection. The script must define
// candidate(c), which receives {e, px, py} for one candidate and returns
// the value to histogram, or null/undefined to drop the candidate. The
// configured energy cut is exposed as the global `threshold`.
const DefaultScript = `function candidate(c) {
	if (c.e > threshold) {
		return Math.sqrt(c.px * c.px + c.py * c.py);
	}
	return null;
}`

// ScriptConfig represents the configuration for a script selector module.
// Either Script or ScriptFile may be provided (but not both); with
// neither, DefaultScript is used.
type ScriptConfig struct {
	// Script is the inline JavaScript source defining candidate(c)
	Script string `json:"script,omitempty"`
	// ScriptFile is the path to a JavaScript file defining candidate(c)
	ScriptFile string `json:"scriptFile,omitempty"`
	// Threshold is exposed to the script as the global `threshold`
	Threshold float64 `json:"threshold,omitempty"`
}

// ScriptModule runs a JavaScript candidate(c) function per candidate.
//
// Goja runtime instances are not goroutine-safe: each module owns one
// runtime and Process must not be called concurrently on one instance.
// JavaScript execution is interrupted when the context is canceled.
type ScriptModule struct {
	scriptSource string
	runtime      *goja.Runtime
	candidateFn  goja.Callable
}

// ScriptError carries structured context for script failures.
type ScriptError struct {
	Code           string
	Message        string
	EventIndex     int
	CandidateIndex int
}

func (e *ScriptError) Error() string {
	return e.Message
}

// ExpressionErrorCode returns the machine-readable failure code.
func (e *ScriptError) ExpressionErrorCode() string {
	return e.Code
}

// newScriptError creates a ScriptError with candidate context.
func newScriptError(code, message string, eventIdx, candidateIdx int) *ScriptError {
	return &ScriptError{
		Code:           code,
		Message:        message,
		EventIndex:     eventIdx,
		CandidateIndex: candidateIdx,
	}
}

// NewScriptFromConfig creates a script selector module from configuration.
// The script is validated, compiled once and the candidate function
// resolved during initialization.
func NewScriptFromConfig(config ScriptConfig) (*ScriptModule, error) {
	scriptSource, err := resolveScriptSource(config)
	if err != nil {
		return nil, err
	}
	if err := validateScript(scriptSource); err != nil {
		return nil, err
	}

	threshold := config.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	vm := goja.New()
	if err := vm.Set("threshold", threshold); err != nil {
		return nil, newScriptError(ErrCodeCompilationFailed,
			fmt.Sprintf("failed to bind threshold: %v", err), -1, -1)
	}

	if _, err := vm.RunString(scriptSource); err != nil {
		return nil, newScriptError(ErrCodeCompilationFailed,
			fmt.Sprintf("script compilation failed: %v", err), -1, -1)
	}

	candidateFn, err := getCandidateFunction(vm)
	if err != nil {
		return nil, err
	}

	logger.Debug("script selector initialized",
		slog.Int("script_length", len(scriptSource)),
		slog.Float64("threshold", threshold),
		slog.Bool("from_file", config.ScriptFile != ""),
	)

	return &ScriptModule{
		scriptSource: scriptSource,
		runtime:      vm,
		candidateFn:  candidateFn,
	}, nil
}

// resolveScriptSource returns the script source, from inline config, from
// file, or DefaultScript when neither is set.
func resolveScriptSource(config ScriptConfig) (string, error) {
	if config.Script != "" && config.ScriptFile != "" {
		return "", newScriptError(ErrCodeInvalidScriptFile,
			"cannot specify both 'script' and 'scriptFile', use only one", -1, -1)
	}
	if config.Script != "" {
		return config.Script, nil
	}
	if config.ScriptFile == "" {
		return DefaultScript, nil
	}

	if err := pathutil.ValidateFilePath(config.ScriptFile); err != nil {
		return "", newScriptError(ErrCodeInvalidScriptFile,
			fmt.Sprintf("invalid script file path %q: %v", config.ScriptFile, err), -1, -1)
	}

	info, err := os.Stat(config.ScriptFile)
	if err != nil {
		return "", newScriptError(ErrCodeScriptFileReadFailed,
			fmt.Sprintf("failed to stat script file %q: %v", config.ScriptFile, err), -1, -1)
	}
	if info.Size() > MaxScriptLength {
		return "", newScriptError(ErrCodeScriptTooLong,
			fmt.Sprintf("script file %q is %d bytes, maximum is %d", config.ScriptFile, info.Size(), MaxScriptLength), -1, -1)
	}

	data, err := os.ReadFile(config.ScriptFile)
	if err != nil {
		return "", newScriptError(ErrCodeScriptFileReadFailed,
			fmt.Sprintf("failed to read script file %q: %v", config.ScriptFile, err), -1, -1)
	}
	return string(data), nil
}

// validateScript checks the script is non-empty and within the size limit.
func validateScript(scriptSource string) error {
	if strings.TrimSpace(scriptSource) == "" {
		return newScriptError(ErrCodeScriptEmpty, "script cannot be empty", -1, -1)
	}
	if len(scriptSource) > MaxScriptLength {
		return newScriptError(ErrCodeScriptTooLong,
			fmt.Sprintf("script is %d bytes, maximum is %d", len(scriptSource), MaxScriptLength), -1, -1)
	}
	return nil
}

// getCandidateFunction resolves and type-checks the candidate function.
func getCandidateFunction(vm *goja.Runtime) (goja.Callable, error) {
	value := vm.Get("candidate")
	if value == nil || goja.IsUndefined(value) {
		return nil, newScriptError(ErrCodeMissingCandidateFn,
			"script does not define a candidate function", -1, -1)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return nil, newScriptError(ErrCodeNotFunction,
			"candidate is defined but is not a function", -1, -1)
	}
	return fn, nil
}

// Process calls candidate(c) for every candidate. A numeric return is
// kept, null or undefined drops the candidate.
func (m *ScriptModule) Process(ctx context.Context, events []event.Event) ([]float64, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.runtime.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	defer m.runtime.ClearInterrupt()

	values := make([]float64, 0, len(events))

	for i, ev := range events {
		if err := ev.Validate(i); err != nil {
			return nil, err
		}

		for j := range ev.E {
			candidate := m.runtime.ToValue(map[string]interface{}{
				"e":  ev.E[j],
				"px": ev.Px[j],
				"py": ev.Py[j],
			})

			result, err := m.candidateFn(goja.Undefined(), candidate)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, newScriptError(ErrCodeExecutionFailed,
					fmt.Sprintf("candidate evaluation failed at event %d candidate %d: %v", i, j, err), i, j)
			}

			if goja.IsNull(result) || goja.IsUndefined(result) {
				continue
			}
			exported := result.Export()
			switch v := exported.(type) {
			case float64:
				values = append(values, v)
			case int64:
				values = append(values, float64(v))
			default:
				return nil, newScriptError(ErrCodeScriptResult,
					fmt.Sprintf("candidate returned %T at event %d candidate %d, want number or null", exported, i, j), i, j)
			}
		}
	}

	return values, nil
}

// ParseScriptConfig extracts a ScriptConfig from raw configuration.
func ParseScriptConfig(config map[string]interface{}) (ScriptConfig, error) {
	cfg := ScriptConfig{}
	var err error
	if cfg.Script, err = stringFromConfig(config, "script"); err != nil {
		return cfg, err
	}
	if cfg.ScriptFile, err = stringFromConfig(config, "scriptFile"); err != nil {
		return cfg, err
	}
	if cfg.Threshold, err = thresholdFromConfig(config); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Verify ScriptModule implements Module
var _ Module = (*ScriptModule)(nil)
