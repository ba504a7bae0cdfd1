// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML).
package config

import (
	"fmt"
	"time"

	"github.com/ptflow/runtime/pkg/analysis"
)

// ConvertToPipeline converts parsed configuration data to a Pipeline
// struct. The data should have been validated against the schema first.
//
// The configuration is expected to have this structure:
//
//	{
//	  "schemaVersion": "1.0.0",
//	  "pipeline": {
//	    "name": "...",
//	    "version": "...",
//	    "source": {...},
//	    "selectors": [...],
//	    "sink": {...}
//	  }
//	}
//
// Omitted sections fall back to defaults: a single loop selector and an
// ASCII histogram sink.
func ConvertToPipeline(data map[string]interface{}) (*analysis.Pipeline, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	pipelineData, ok := data["pipeline"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'pipeline' section")
	}

	pipeline := &analysis.Pipeline{
		Enabled:   true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	name, ok := pipelineData["name"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'pipeline.name'")
	}
	pipeline.Name = name
	// Use name as ID unless one is configured
	pipeline.ID = name
	if id, okID := pipelineData["id"].(string); okID {
		pipeline.ID = id
	}

	version, ok := pipelineData["version"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'pipeline.version'")
	}
	pipeline.Version = version

	if description, okDesc := pipelineData["description"].(string); okDesc {
		pipeline.Description = description
	}
	if enabled, okEnabled := pipelineData["enabled"].(bool); okEnabled {
		pipeline.Enabled = enabled
	}

	sourceData, ok := pipelineData["source"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'pipeline.source' section")
	}
	sourceConfig, err := convertModuleConfig(sourceData)
	if err != nil {
		return nil, fmt.Errorf("invalid source config: %w", err)
	}
	pipeline.Source = sourceConfig

	if selectorsData, okSel := pipelineData["selectors"].([]interface{}); okSel {
		for i, selectorData := range selectorsData {
			selectorMap, isMap := selectorData.(map[string]interface{})
			if !isMap {
				return nil, fmt.Errorf("invalid selector at index %d", i)
			}
			selectorConfig, convertErr := convertModuleConfig(selectorMap)
			if convertErr != nil {
				return nil, fmt.Errorf("invalid selector at index %d: %w", i, convertErr)
			}
			pipeline.Selectors = append(pipeline.Selectors, *selectorConfig)
		}
	}
	if len(pipeline.Selectors) == 0 {
		pipeline.Selectors = []analysis.ModuleConfig{{Type: "loop", Config: map[string]interface{}{}}}
	}

	if sinkData, okSink := pipelineData["sink"].(map[string]interface{}); okSink {
		sinkConfig, convertErr := convertModuleConfig(sinkData)
		if convertErr != nil {
			return nil, fmt.Errorf("invalid sink config: %w", convertErr)
		}
		pipeline.Sink = sinkConfig
	} else {
		pipeline.Sink = &analysis.ModuleConfig{Type: "histogram", Config: map[string]interface{}{}}
	}

	if dryRunData, okDry := pipelineData["dryRunOptions"].(map[string]interface{}); okDry {
		opts := &analysis.DryRunOptions{}
		if showBins, okBins := dryRunData["showBins"].(bool); okBins {
			opts.ShowBins = showBins
		}
		pipeline.DryRunOptions = opts
	}

	return pipeline, nil
}

// convertModuleConfig converts a raw module configuration map to a
// ModuleConfig. Every key except 'type' lands in Config.
func convertModuleConfig(data map[string]interface{}) (*analysis.ModuleConfig, error) {
	moduleType, ok := data["type"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'type'")
	}

	moduleConfig := &analysis.ModuleConfig{
		Type:   moduleType,
		Config: make(map[string]interface{}),
	}
	for key, value := range data {
		if key != "type" {
			moduleConfig.Config[key] = value
		}
	}

	return moduleConfig, nil
}
