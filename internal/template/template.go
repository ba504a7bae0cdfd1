// Package template provides variable substitution for configuration
// strings. Sink paths and titles can reference pipeline metadata with
// {{pipeline.id}}-style variables and optional default values.
package template

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ptflow/runtime/internal/logger"
)

// Template syntax constants
const (
	// TemplatePrefix is the opening delimiter for template variables
	TemplatePrefix = "{{"
	// TemplateSuffix is the closing delimiter for template variables
	TemplateSuffix = "}}"
)

// Error messages for template validation
const (
	ErrMsgInvalidTemplateSyntax = "invalid template syntax"
	ErrMsgEmptyVariablePath     = "empty variable path"
)

// templateVarRegex matches template variables like {{pipeline.id}} or
// {{pipeline.description | default: "no description"}}.
// Group 1: variable path, group 2: optional default clause, group 3: default value.
var templateVarRegex = regexp.MustCompile(`\{\{\s*([^|}]+?)(\s*\|\s*default:\s*"([^"]*)")?\s*\}\}`)

// Variable is a parsed template variable.
type Variable struct {
	FullMatch    string // the full matched string including {{ }}
	Path         string // dot-separated variable path (e.g. "pipeline.id")
	DefaultValue string // default value if specified
	HasDefault   bool   // whether a default value was specified
}

// Evaluator substitutes template variables from a variable map.
//
// Parsed templates are cached per template string. The cache is
// unbounded and not goroutine-safe; each goroutine should use its own
// Evaluator.
type Evaluator struct {
	cache map[string][]Variable
}

// NewEvaluator creates a new template evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string][]Variable)}
}

// HasVariables reports whether a string contains template variables.
func HasVariables(s string) bool {
	return strings.Contains(s, TemplatePrefix) && strings.Contains(s, TemplateSuffix)
}

// ParseVariables extracts all template variables from a template string.
func (e *Evaluator) ParseVariables(template string) []Variable {
	if cached, ok := e.cache[template]; ok {
		return cached
	}

	matches := templateVarRegex.FindAllStringSubmatch(template, -1)
	variables := make([]Variable, 0, len(matches))
	for _, match := range matches {
		v := Variable{
			FullMatch: match[0],
			Path:      strings.TrimSpace(match[1]),
		}
		if match[2] != "" {
			v.DefaultValue = match[3]
			v.HasDefault = true
		}
		variables = append(variables, v)
	}

	e.cache[template] = variables
	return variables
}

// Evaluate replaces all template variables with values from vars.
//
// Template syntax:
//   - {{pipeline.id}} accesses nested fields with dot notation
//   - {{pipeline.description | default: "none"}} falls back when missing
//
// Missing variables resolve to the empty string unless a default is given.
func (e *Evaluator) Evaluate(template string, vars map[string]interface{}) string {
	if !HasVariables(template) {
		return template
	}

	variables := e.ParseVariables(template)
	if len(variables) == 0 {
		return template
	}

	result := template
	for _, v := range variables {
		result = strings.Replace(result, v.FullMatch, e.resolveVariable(v, vars), 1)
	}
	return result
}

// resolveVariable resolves a single variable against the variable map.
func (e *Evaluator) resolveVariable(v Variable, vars map[string]interface{}) string {
	value, found := GetNestedValue(vars, v.Path)
	if !found || value == nil {
		if v.HasDefault {
			return v.DefaultValue
		}
		logger.Warn("template variable missing, using empty string",
			slog.String("path", v.Path),
		)
		return ""
	}
	return ValueToString(value)
}

// GetNestedValue extracts a value from nested maps using dot notation.
// Returns the value and whether the path was found.
func GetNestedValue(vars map[string]interface{}, path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	parts := strings.Split(path, ".")
	current := interface{}(vars)
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok || m == nil {
			return nil, false
		}
		value, ok := m[part]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

// ValueToString converts a variable value to its string representation.
// Whole-number floats render without a decimal point, so numeric IDs
// decoded from JSON keep their usual form in paths.
func ValueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ValidateSyntax checks that a template string has well-formed
// {{...}} expressions. Returns an error for unmatched or empty braces.
func ValidateSyntax(template string) error {
	if template == "" {
		return nil
	}

	openCount := strings.Count(template, TemplatePrefix)
	closeCount := strings.Count(template, TemplateSuffix)
	if openCount != closeCount {
		return fmt.Errorf("%s: unmatched template delimiters (found %d '{{' and %d '}}')",
			ErrMsgInvalidTemplateSyntax, openCount, closeCount)
	}
	if openCount == 0 {
		return nil
	}

	if regexp.MustCompile(`\{\{\s*\}\}`).MatchString(template) {
		return fmt.Errorf("%s: %s", ErrMsgInvalidTemplateSyntax, ErrMsgEmptyVariablePath)
	}

	for _, match := range templateVarRegex.FindAllStringSubmatch(template, -1) {
		if strings.TrimSpace(match[1]) == "" {
			return fmt.Errorf("%s: %s", ErrMsgInvalidTemplateSyntax, ErrMsgEmptyVariablePath)
		}
	}

	// "}}{{" has balanced counts but no valid pairing; anything left after
	// stripping valid expressions is a stray delimiter.
	remainder := templateVarRegex.ReplaceAllString(template, "")
	if strings.Contains(remainder, TemplatePrefix) || strings.Contains(remainder, TemplateSuffix) {
		return fmt.Errorf("%s: stray '{{' or '}}' outside a valid expression",
			ErrMsgInvalidTemplateSyntax)
	}
	return nil
}
