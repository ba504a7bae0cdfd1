package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `schemaVersion: "1.0.0"
pipeline:
  name: pt-analysis
  version: "1.0.0"
  source:
    type: jsonl
    path: events.jsonl
  selectors:
    - type: loop
    - type: expr
      cut: "e > 100.0"
  sink:
    type: histogram
    render: none
`

const validJSON = `{
  "schemaVersion": "1.0.0",
  "pipeline": {
    "name": "pt-analysis",
    "version": "1.0.0",
    "source": {"type": "inline", "events": []},
    "selectors": [{"type": "columns", "threshold": 50}],
    "sink": {"type": "csv", "path": "pt.csv"}
  }
}`

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfigYAML(t *testing.T) {
	path := writeConfigFile(t, "pipeline.yaml", validYAML)

	result := ParseConfig(path)
	if !result.IsValid() {
		t.Fatalf("expected valid config, errors: %v", result.AllErrors())
	}
	if result.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", result.Format)
	}
	if result.Data["schemaVersion"] != "1.0.0" {
		t.Errorf("unexpected schemaVersion: %v", result.Data["schemaVersion"])
	}
}

func TestParseConfigJSON(t *testing.T) {
	path := writeConfigFile(t, "pipeline.json", validJSON)

	result := ParseConfig(path)
	if !result.IsValid() {
		t.Fatalf("expected valid config, errors: %v", result.AllErrors())
	}
	if result.Format != "json" {
		t.Errorf("Format = %q, want json", result.Format)
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	result := ParseConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if result.IsValid() {
		t.Fatal("expected error for missing file")
	}
	if result.ParseErrors[0].Type != ErrorTypeIO {
		t.Errorf("Type = %q, want io", result.ParseErrors[0].Type)
	}
}

func TestParseConfigStringAutoDetect(t *testing.T) {
	result := ParseConfigString(validJSON, "")
	if result.Format != "json" {
		t.Errorf("Format = %q, want json", result.Format)
	}
	if !result.IsValid() {
		t.Errorf("unexpected errors: %v", result.AllErrors())
	}

	result = ParseConfigString(validYAML, "")
	if result.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", result.Format)
	}
}

func TestParseConfigStringSyntaxError(t *testing.T) {
	content := "{\n  \"schemaVersion\": \"1.0.0\",\n  bad\n}"
	result := ParseConfigString(content, "json")
	if result.IsValid() {
		t.Fatal("expected syntax error")
	}
	pe := result.ParseErrors[0]
	if pe.Type != ErrorTypeSyntax {
		t.Errorf("Type = %q, want syntax", pe.Type)
	}
	if pe.Line != 3 {
		t.Errorf("Line = %d, want 3", pe.Line)
	}
}

func TestParseConfigStringEmpty(t *testing.T) {
	result := ParseConfigString("   \n", "yaml")
	if result.IsValid() {
		t.Fatal("expected error for empty content")
	}
	if !strings.Contains(result.ParseErrors[0].Message, "empty content") {
		t.Errorf("unexpected message: %s", result.ParseErrors[0].Message)
	}
}

func TestParseConfigStringNonObject(t *testing.T) {
	result := ParseConfigString("[1, 2, 3]", "json")
	if result.IsValid() {
		t.Fatal("expected error for non-object document")
	}
	if result.ParseErrors[0].Type != ErrorTypeFormat {
		t.Errorf("Type = %q, want format", result.ParseErrors[0].Type)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"pipeline.json", "json"},
		{"pipeline.yaml", "yaml"},
		{"pipeline.YML", "yaml"},
		{"pipeline.toml", ""},
		{"pipeline", ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
