// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML).
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ptflow/runtime/pkg/analysis"
)

// ErrInvalidConfig is returned when a configuration fails parsing or
// schema validation. Inspect the Result for details.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// LoadedPipeline bundles the converted pipeline with the raw parse and
// validation result, so callers can report detailed errors.
type LoadedPipeline struct {
	Pipeline *analysis.Pipeline
	Result   *Result
}

// Loader loads pipeline configurations from files.
type Loader struct {
	// basePath is the base directory for relative configuration paths
	basePath string
}

// NewLoader creates a new configuration loader.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Load reads, parses, validates and converts a pipeline configuration.
// Relative paths are resolved against the loader's base path.
func (l *Loader) Load(filePath string) (*LoadedPipeline, error) {
	if l.basePath != "" && !filepath.IsAbs(filePath) {
		filePath = filepath.Join(l.basePath, filePath)
	}

	result := ParseConfig(filePath)
	loaded := &LoadedPipeline{Result: result}
	if !result.IsValid() {
		return loaded, fmt.Errorf("%w: %s", ErrInvalidConfig, filePath)
	}

	pipeline, err := ConvertToPipeline(result.Data)
	if err != nil {
		return loaded, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	loaded.Pipeline = pipeline
	return loaded, nil
}
