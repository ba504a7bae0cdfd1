// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseConfig parses and validates a configuration file.
// The format is detected from the file extension, or from the content
// when the extension is ambiguous. Parse errors skip validation.
func ParseConfig(filePath string) *Result {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return &Result{
			FilePath: filePath,
			ParseErrors: []ParseError{{
				Path:    filePath,
				Message: fmt.Sprintf("failed to read file: %v", err),
				Type:    ErrorTypeIO,
			}},
		}
	}

	result := ParseConfigString(string(content), DetectFormat(filePath))
	result.FilePath = filePath
	for i := range result.ParseErrors {
		if result.ParseErrors[i].Path == "" {
			result.ParseErrors[i].Path = filePath
		}
	}
	return result
}

// ParseConfigString parses and validates configuration content.
// If format is empty it is auto-detected from the content.
func ParseConfigString(content, format string) *Result {
	result := &Result{Format: format}

	if format == "" {
		switch {
		case IsJSON(content):
			result.Format = "json"
		case IsYAML(content):
			result.Format = "yaml"
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect configuration format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
	}

	data, parseErr := parseDocument(content, result.Format)
	if parseErr != nil {
		result.ParseErrors = append(result.ParseErrors, *parseErr)
		return result
	}
	result.Data = data

	validation := ValidateConfig(data)
	result.ValidationErrors = validation.Errors
	return result
}

// parseDocument decodes one JSON or YAML document into a map.
func parseDocument(content, format string) (map[string]interface{}, *ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{
			Message: "empty content: expected a configuration document",
			Type:    ErrorTypeSyntax,
		}
	}

	var (
		data interface{}
		err  error
	)
	switch format {
	case "json":
		err = json.Unmarshal([]byte(content), &data)
		if err != nil {
			pe := jsonParseError(err, content)
			return nil, &pe
		}
	case "yaml":
		err = yaml.Unmarshal([]byte(content), &data)
		if err != nil {
			pe := yamlParseError(err)
			return nil, &pe
		}
	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("unsupported format: %s", format),
			Type:    ErrorTypeFormat,
		}
	}

	if data == nil {
		return nil, nil
	}
	dataMap, ok := data.(map[string]interface{})
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid configuration: expected an object, got %T", data),
			Type:    ErrorTypeFormat,
		}
	}
	return dataMap, nil
}

// jsonParseError extracts location details from a JSON unmarshaling error.
func jsonParseError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, typeErr.Offset)
		parseErr.Message = fmt.Sprintf("type error at field '%s': expected %s, got %s",
			typeErr.Field, typeErr.Type.String(), typeErr.Value)
	}

	return parseErr
}

// yamlParseError extracts location details from a YAML unmarshaling error.
// The yaml.v3 library reports the line in the error message
// ("yaml: line X: ...").
func yamlParseError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	if typeErr, ok := err.(*yaml.TypeError); ok {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}
	if strings.Contains(err.Error(), "yaml: line ") {
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
			parseErr.Line = line
		}
	}

	return parseErr
}

// offsetToLineColumn converts a byte offset to 1-based line and column.
func offsetToLineColumn(content string, offset int64) (line, column int) {
	if offset <= 0 {
		return 1, 1
	}

	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// DetectFormat detects the configuration format from the file extension.
// Returns "json", "yaml", or empty string if the extension is ambiguous.
func DetectFormat(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// IsJSON checks if the content appears to be JSON.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML checks if the content parses as YAML. JSON is also valid YAML,
// so this may return true for JSON content.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	err := yaml.Unmarshal([]byte(content), &data)
	return err == nil && data != nil
}
