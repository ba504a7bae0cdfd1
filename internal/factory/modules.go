// Package factory provides module creation functions for the pipeline
// runtime. It centralizes the logic for instantiating source, selector,
// and sink modules from their configuration using the module registry.
//
// # Module Creation
//
// The factory uses the registry package to look up module constructors by
// type. Built-in modules (jsonl, inline, synthetic, loop, columns, frame,
// expr, script, histogram, csv) are registered automatically at startup.
// Unknown types resolve to stub implementations.
//
// # Adding New Module Types
//
// To add a new module type, see the documentation in internal/registry.
// You do NOT need to modify this factory; just register your constructor.
package factory

import (
	"github.com/ptflow/runtime/internal/modules/selector"
	"github.com/ptflow/runtime/internal/modules/sink"
	"github.com/ptflow/runtime/internal/modules/source"
	"github.com/ptflow/runtime/internal/registry"
	"github.com/ptflow/runtime/pkg/analysis"
)

// CreateSourceModule creates a source module instance from configuration.
// Uses the registry to look up the constructor by type.
// Returns a stub module for unregistered types.
func CreateSourceModule(cfg *analysis.ModuleConfig) (source.Module, error) {
	if cfg == nil {
		return nil, nil
	}

	constructor := registry.GetSourceConstructor(cfg.Type)
	if constructor != nil {
		return constructor(cfg)
	}

	// Fallback to stub for unknown types
	return source.NewStub(cfg.Type), nil
}

// CreateSelectorModules creates selector module instances from
// configuration, preserving order. Unknown types use stub implementations.
func CreateSelectorModules(cfgs []analysis.ModuleConfig) ([]selector.Module, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}

	modules := make([]selector.Module, 0, len(cfgs))
	for i, cfg := range cfgs {
		constructor := registry.GetSelectorConstructor(cfg.Type)
		if constructor == nil {
			modules = append(modules, selector.NewStub(cfg.Type))
			continue
		}
		module, err := constructor(cfg, i)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// CreateSinkModule creates a sink module instance from configuration.
// The pipeline is passed through so sinks can resolve template variables
// like {{pipeline.id}} in output paths.
// Returns a stub module for unregistered types.
func CreateSinkModule(cfg *analysis.ModuleConfig, pipeline *analysis.Pipeline) (sink.Module, error) {
	if cfg == nil {
		return nil, nil
	}

	constructor := registry.GetSinkConstructor(cfg.Type)
	if constructor != nil {
		return constructor(cfg, pipeline)
	}

	// Fallback to stub for unknown types
	return sink.NewStub(cfg.Type), nil
}
