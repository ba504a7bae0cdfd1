// Package registry provides module registries for source, selector, and
// sink modules.
//
// # Overview
//
// Modules register their constructors by type string instead of being
// resolved through hard-coded switch statements, so new module types can
// be added without modifying the factory.
//
// # Adding a New Module
//
// To add a new source module type (e.g., a "root" file source):
//
//  1. Implement the appropriate interface (source.Module, selector.Module
//     or sink.Module)
//  2. Create a constructor function matching the registry signature
//  3. Register the constructor in an init() function
//
// Example:
//
//	func init() {
//	    registry.RegisterSource("root", NewROOTModule)
//	}
//
// # Built-in Modules
//
// Built-in modules (jsonl, inline, synthetic, loop, columns, frame, expr,
// script, histogram, csv) are registered automatically at startup via
// init() functions.
//
// # Stub Fallback
//
// Unknown types resolve to stub implementations in the factory that log
// their invocation and run a neutral selection. This allows pipelines to
// run even with unimplemented module types.
package registry

import (
	"sync"

	"github.com/ptflow/runtime/internal/modules/selector"
	"github.com/ptflow/runtime/internal/modules/sink"
	"github.com/ptflow/runtime/internal/modules/source"
	"github.com/ptflow/runtime/pkg/analysis"
)

// SourceConstructor is a function that creates a source module from
// configuration. Returns an error if the configuration is invalid.
type SourceConstructor func(cfg *analysis.ModuleConfig) (source.Module, error)

// SelectorConstructor is a function that creates a selector module from
// configuration. The constructor receives the selector's index in the
// pipeline for error context.
type SelectorConstructor func(cfg analysis.ModuleConfig, index int) (selector.Module, error)

// SinkConstructor is a function that creates a sink module from
// configuration. The pipeline is passed for template variable resolution
// in output paths and titles.
type SinkConstructor func(cfg *analysis.ModuleConfig, pipeline *analysis.Pipeline) (sink.Module, error)

var (
	sourceMu       sync.RWMutex
	sourceRegistry = make(map[string]SourceConstructor)
)

var (
	selectorMu       sync.RWMutex
	selectorRegistry = make(map[string]SelectorConstructor)
)

var (
	sinkMu       sync.RWMutex
	sinkRegistry = make(map[string]SinkConstructor)
)

// RegisterSource registers a source module constructor by type string.
// Registering an already registered type overwrites the previous
// constructor. Safe for concurrent use, typically called from init().
func RegisterSource(moduleType string, constructor SourceConstructor) {
	sourceMu.Lock()
	defer sourceMu.Unlock()
	sourceRegistry[moduleType] = constructor
}

// RegisterSelector registers a selector module constructor by type string.
// Registering an already registered type overwrites the previous
// constructor. Safe for concurrent use, typically called from init().
func RegisterSelector(moduleType string, constructor SelectorConstructor) {
	selectorMu.Lock()
	defer selectorMu.Unlock()
	selectorRegistry[moduleType] = constructor
}

// RegisterSink registers a sink module constructor by type string.
// Registering an already registered type overwrites the previous
// constructor. Safe for concurrent use, typically called from init().
func RegisterSink(moduleType string, constructor SinkConstructor) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sinkRegistry[moduleType] = constructor
}

// GetSourceConstructor returns the registered constructor for a source
// module type, or nil if none is registered.
func GetSourceConstructor(moduleType string) SourceConstructor {
	sourceMu.RLock()
	defer sourceMu.RUnlock()
	return sourceRegistry[moduleType]
}

// GetSelectorConstructor returns the registered constructor for a
// selector module type, or nil if none is registered.
func GetSelectorConstructor(moduleType string) SelectorConstructor {
	selectorMu.RLock()
	defer selectorMu.RUnlock()
	return selectorRegistry[moduleType]
}

// GetSinkConstructor returns the registered constructor for a sink
// module type, or nil if none is registered.
func GetSinkConstructor(moduleType string) SinkConstructor {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return sinkRegistry[moduleType]
}

// ListSourceTypes returns all registered source module type names.
func ListSourceTypes() []string {
	sourceMu.RLock()
	defer sourceMu.RUnlock()
	types := make([]string, 0, len(sourceRegistry))
	for t := range sourceRegistry {
		types = append(types, t)
	}
	return types
}

// ListSelectorTypes returns all registered selector module type names.
func ListSelectorTypes() []string {
	selectorMu.RLock()
	defer selectorMu.RUnlock()
	types := make([]string, 0, len(selectorRegistry))
	for t := range selectorRegistry {
		types = append(types, t)
	}
	return types
}

// ListSinkTypes returns all registered sink module type names.
func ListSinkTypes() []string {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	types := make([]string, 0, len(sinkRegistry))
	for t := range sinkRegistry {
		types = append(types, t)
	}
	return types
}
