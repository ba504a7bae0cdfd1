// Package registry provides module registries for the ptflow runtime.
// This file registers all built-in modules during initialization.
package registry

import (
	"fmt"

	"github.com/ptflow/runtime/internal/modules/selector"
	"github.com/ptflow/runtime/internal/modules/sink"
	"github.com/ptflow/runtime/internal/modules/source"
	"github.com/ptflow/runtime/pkg/analysis"
)

func init() {
	registerBuiltinSourceModules()
	registerBuiltinSelectorModules()
	registerBuiltinSinkModules()
}

// registerBuiltinSourceModules registers all built-in source module types.
func registerBuiltinSourceModules() {
	// jsonl - JSON-lines event file source
	RegisterSource("jsonl", func(cfg *analysis.ModuleConfig) (source.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		jsonlConfig, err := source.ParseJSONLConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonl config: %w", err)
		}
		return source.NewJSONLFromConfig(jsonlConfig)
	})

	// inline - events embedded in the pipeline configuration
	RegisterSource("inline", func(cfg *analysis.ModuleConfig) (source.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		return source.NewInlineFromConfig(cfg.Config)
	})

	// synthetic - deterministic generated events
	RegisterSource("synthetic", func(cfg *analysis.ModuleConfig) (source.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		synthConfig, err := source.ParseSyntheticConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid synthetic config: %w", err)
		}
		return source.NewSyntheticFromConfig(synthConfig)
	})
}

// registerBuiltinSelectorModules registers all built-in selector module types.
func registerBuiltinSelectorModules() {
	// loop - reference candidate-loop selector
	RegisterSelector("loop", func(cfg analysis.ModuleConfig, index int) (selector.Module, error) {
		module, err := selector.NewLoopFromConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid loop config at index %d: %w", index, err)
		}
		return module, nil
	})

	// columns - vectorized column selector
	RegisterSelector("columns", func(cfg analysis.ModuleConfig, index int) (selector.Module, error) {
		module, err := selector.NewColumnsFromConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid columns config at index %d: %w", index, err)
		}
		return module, nil
	})

	// frame - dataframe selector
	RegisterSelector("frame", func(cfg analysis.ModuleConfig, index int) (selector.Module, error) {
		module, err := selector.NewFrameFromConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid frame config at index %d: %w", index, err)
		}
		return module, nil
	})

	// expr - string-expression selector
	RegisterSelector("expr", func(cfg analysis.ModuleConfig, index int) (selector.Module, error) {
		module, err := selector.NewExprFromConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid expr config at index %d: %w", index, err)
		}
		return module, nil
	})

	// script - JavaScript selector using Goja
	RegisterSelector("script", func(cfg analysis.ModuleConfig, index int) (selector.Module, error) {
		scriptConfig, err := selector.ParseScriptConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid script config at index %d: %w", index, err)
		}
		module, err := selector.NewScriptFromConfig(scriptConfig)
		if err != nil {
			return nil, fmt.Errorf("invalid script config at index %d: %w", index, err)
		}
		return module, nil
	})
}

// registerBuiltinSinkModules registers all built-in sink module types.
func registerBuiltinSinkModules() {
	// histogram - fixed-range histogram accumulator with plot rendering
	RegisterSink("histogram", func(cfg *analysis.ModuleConfig, pipeline *analysis.Pipeline) (sink.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		return sink.NewHistogramFromConfig(cfg.Config, templateVars(pipeline))
	})

	// csv - one-column CSV dump of the selected values
	RegisterSink("csv", func(cfg *analysis.ModuleConfig, pipeline *analysis.Pipeline) (sink.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		return sink.NewCSVFromConfig(cfg.Config, templateVars(pipeline))
	})
}

// templateVars builds the template variable environment for sink paths
// and titles.
func templateVars(pipeline *analysis.Pipeline) map[string]interface{} {
	if pipeline == nil {
		return nil
	}
	return map[string]interface{}{
		"pipeline": map[string]interface{}{
			"id":   pipeline.ID,
			"name": pipeline.Name,
		},
	}
}
