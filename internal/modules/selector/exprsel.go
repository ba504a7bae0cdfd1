// Package selector provides implementations for candidate selector modules.
// Expr module expresses the cut and the computed quantity as strings,
// compiled once and evaluated per candidate.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
)

// Default expressions. They reproduce the standard selection so a bare
// `type: expr` selector behaves like the loop variant.
const (
	DefaultCutExpression   = "e > 100.0"
	DefaultValueExpression = "sqrt(px*px + py*py)"
)

// Error codes for the expr selector
const (
	ErrCodeInvalidExpression = "INVALID_EXPRESSION"
	ErrCodeNotBoolean        = "CUT_NOT_BOOLEAN"
	ErrCodeNotNumeric        = "VALUE_NOT_NUMERIC"
)

// ExprModule selects candidates by evaluating compiled expressions.
// The cut expression must yield a boolean, the value expression a number.
// Each candidate is exposed to the expressions as the variables e, px
// and py, plus a sqrt helper.
type ExprModule struct {
	cutSource   string
	valueSource string
	cut         *vm.Program
	value       *vm.Program
}

// ExprError carries structured context for expression failures.
type ExprError struct {
	Code           string
	Message        string
	Expression     string
	EventIndex     int
	CandidateIndex int
}

func (e *ExprError) Error() string {
	return e.Message
}

// ExpressionErrorCode returns the machine-readable failure code.
func (e *ExprError) ExpressionErrorCode() string {
	return e.Code
}

// newExprError creates an ExprError with candidate context.
func newExprError(code, message, expression string, eventIdx, candidateIdx int) *ExprError {
	return &ExprError{
		Code:           code,
		Message:        message,
		Expression:     expression,
		EventIndex:     eventIdx,
		CandidateIndex: candidateIdx,
	}
}

// NewExprFromConfig creates an expr selector module from raw configuration.
// Recognized options:
//
//	cut:       boolean expression, defaults to "e > 100.0"
//	value:     numeric expression, defaults to "sqrt(px*px + py*py)"
//	threshold: shorthand that rewrites the default cut's constant
//
// Expressions are compiled once here; Process only runs them.
func NewExprFromConfig(config map[string]interface{}) (*ExprModule, error) {
	cutSource, err := stringFromConfig(config, "cut")
	if err != nil {
		return nil, err
	}
	valueSource, err := stringFromConfig(config, "value")
	if err != nil {
		return nil, err
	}

	if cutSource == "" {
		threshold, err := thresholdFromConfig(config)
		if err != nil {
			return nil, err
		}
		if threshold == DefaultThreshold {
			cutSource = DefaultCutExpression
		} else {
			cutSource = "e > " + strconv.FormatFloat(threshold, 'g', -1, 64)
		}
	}
	if valueSource == "" {
		valueSource = DefaultValueExpression
	}

	// AllowUndefinedVariables keeps compilation decoupled from the
	// candidate environment shape.
	cut, err := expr.Compile(cutSource, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, newExprError(ErrCodeInvalidExpression,
			fmt.Sprintf("invalid cut expression %q: %v", cutSource, err), cutSource, -1, -1)
	}
	value, err := expr.Compile(valueSource, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, newExprError(ErrCodeInvalidExpression,
			fmt.Sprintf("invalid value expression %q: %v", valueSource, err), valueSource, -1, -1)
	}

	logger.Debug("expr selector initialized",
		slog.String("cut", cutSource),
		slog.String("value", valueSource),
	)

	return &ExprModule{
		cutSource:   cutSource,
		valueSource: valueSource,
		cut:         cut,
		value:       value,
	}, nil
}

// Process evaluates the cut for every candidate and the value expression
// for the ones that pass.
func (m *ExprModule) Process(ctx context.Context, events []event.Event) ([]float64, error) {
	values := make([]float64, 0, len(events))

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ev.Validate(i); err != nil {
			return nil, err
		}

		for j := range ev.E {
			env := candidateEnv(ev, j)

			keep, err := m.evalCut(env, i, j)
			if err != nil {
				return nil, err
			}
			if !keep {
				continue
			}

			v, err := m.evalValue(env, i, j)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}

	return values, nil
}

// candidateEnv builds the expression environment for one candidate.
func candidateEnv(ev event.Event, j int) map[string]interface{} {
	return map[string]interface{}{
		"e":    ev.E[j],
		"px":   ev.Px[j],
		"py":   ev.Py[j],
		"sqrt": math.Sqrt,
	}
}

func (m *ExprModule) evalCut(env map[string]interface{}, eventIdx, candidateIdx int) (bool, error) {
	output, err := expr.Run(m.cut, env)
	if err != nil {
		return false, newExprError(ErrCodeEvaluationFailed,
			fmt.Sprintf("cut evaluation failed at event %d candidate %d: %v", eventIdx, candidateIdx, err),
			m.cutSource, eventIdx, candidateIdx)
	}
	keep, ok := output.(bool)
	if !ok {
		return false, newExprError(ErrCodeNotBoolean,
			fmt.Sprintf("cut expression %q returned %T, want bool", m.cutSource, output),
			m.cutSource, eventIdx, candidateIdx)
	}
	return keep, nil
}

func (m *ExprModule) evalValue(env map[string]interface{}, eventIdx, candidateIdx int) (float64, error) {
	output, err := expr.Run(m.value, env)
	if err != nil {
		return 0, newExprError(ErrCodeEvaluationFailed,
			fmt.Sprintf("value evaluation failed at event %d candidate %d: %v", eventIdx, candidateIdx, err),
			m.valueSource, eventIdx, candidateIdx)
	}
	switch v := output.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, newExprError(ErrCodeNotNumeric,
		fmt.Sprintf("value expression %q returned %T, want number", m.valueSource, output),
		m.valueSource, eventIdx, candidateIdx)
}

// Verify ExprModule implements Module
var _ Module = (*ExprModule)(nil)
