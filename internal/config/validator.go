// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML).
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/pipeline-schema.json
var embeddedSchema []byte

// schemaURL is the canonical identifier of the embedded schema.
const schemaURL = "https://ptflow.dev/schemas/pipeline/v1.0.0/pipeline-schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// GetEmbeddedSchema returns the embedded pipeline schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// getCompiledSchema returns the compiled JSON schema, compiling it on
// first use.
func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(embeddedSchema, &schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaInitErr = compiler.Compile(schemaURL)
	})

	if schemaInitErr != nil {
		return nil, schemaInitErr
	}
	return compiledSchema, nil
}

// ValidationResult contains the result of validating a configuration.
type ValidationResult struct {
	// Valid indicates whether the configuration passed the schema
	Valid bool
	// Errors contains validation errors
	Errors []ValidationError
}

// ValidateConfig validates a parsed configuration against the pipeline
// schema.
func ValidateConfig(data map[string]interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(data) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "required",
			Message: "configuration data is empty",
		})
		return result
	}

	schema, err := getCompiledSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "schema",
			Message: fmt.Sprintf("failed to load schema: %v", err),
		})
		return result
	}

	if validationErr := schema.Validate(data); validationErr != nil {
		result.Valid = false
		if detailedErr, ok := validationErr.(*jsonschema.ValidationError); ok {
			result.Errors = convertValidationErrors(detailedErr)
		} else {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "/",
				Type:    "validation",
				Message: validationErr.Error(),
			})
		}
	}

	return result
}

// convertValidationErrors flattens jsonschema validation errors, including
// nested causes, into our format.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	if err.ErrorKind != nil {
		errors = append(errors, ValidationError{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    extractErrorType(err),
			Message: err.Error(),
		})
	}
	for _, cause := range err.Causes {
		errors = append(errors, convertValidationErrors(cause)...)
	}

	return errors
}

// formatInstanceLocation formats the instance location as a JSON path.
func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// extractErrorType extracts a simplified error type from the validation
// error message.
func extractErrorType(err *jsonschema.ValidationError) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "required"):
		return "required"
	case strings.Contains(msg, "type"):
		return "type"
	case strings.Contains(msg, "pattern"):
		return "pattern"
	case strings.Contains(msg, "enum"):
		return "enum"
	case strings.Contains(msg, "minimum") || strings.Contains(msg, "maximum"):
		return "range"
	case strings.Contains(msg, "additionalproperties"):
		return "additionalProperties"
	default:
		return "validation"
	}
}
