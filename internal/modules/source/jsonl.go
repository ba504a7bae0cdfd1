// Package source provides implementations for event source modules.
// The JSONL module reads events from a JSON-lines file, one event object
// per line.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ptflow/runtime/internal/event"
	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/internal/pathutil"
)

// Error codes for the JSONL source module
const (
	ErrCodeFileOpenFailed  = "SOURCE_FILE_OPEN_FAILED"
	ErrCodeFileReadFailed  = "SOURCE_FILE_READ_FAILED"
	ErrCodeEventParse      = "EVENT_PARSE_FAILED"
	ErrCodeEventValidation = "EVENT_VALIDATION_FAILED"
)

// maxLineBytes bounds a single event line (1MB). Lines beyond this
// indicate a file that should be split or a format error.
const maxLineBytes = 1 << 20

// Common errors for the JSONL source module
var (
	// ErrEmptyPath is returned when no file path is configured
	ErrEmptyPath = errors.New("jsonl source requires a 'path'")
)

// JSONLConfig represents the configuration for a JSONL source module.
type JSONLConfig struct {
	// Path is the event file to read (required)
	Path string `json:"path"`
	// MaxEvents limits the number of events read (0 = unlimited)
	MaxEvents int `json:"maxEvents,omitempty"`
}

// SourceError carries structured context for source read failures.
type SourceError struct {
	Code    string
	Message string
	Path    string
	Line    int
}

func (e *SourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// JSONLModule reads events from a JSON-lines file. Each line is one event
// object with three numeric array fields:
//
//	{"e": [150, 50], "px": [3, 0], "py": [4, 0]}
//
// Blank lines are skipped. Every event is validated for the equal-length
// column invariant before it is returned.
type JSONLModule struct {
	path      string
	maxEvents int
}

// NewJSONLFromConfig creates a new JSONL source module from configuration.
// The path is validated for traversal; the file itself is opened at Fetch
// time so a missing file surfaces as a fetch error with full context.
func NewJSONLFromConfig(config JSONLConfig) (*JSONLModule, error) {
	if strings.TrimSpace(config.Path) == "" {
		return nil, ErrEmptyPath
	}
	if err := pathutil.ValidateFilePath(config.Path); err != nil {
		return nil, fmt.Errorf("invalid event file path: %w", err)
	}

	return &JSONLModule{
		path:      config.Path,
		maxEvents: config.MaxEvents,
	}, nil
}

// Fetch reads all events from the configured file.
func (m *JSONLModule) Fetch(ctx context.Context) ([]event.Event, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, &SourceError{
			Code:    ErrCodeFileOpenFailed,
			Message: fmt.Sprintf("failed to open event file: %v", err),
			Path:    m.path,
		}
	}
	defer f.Close()

	var events []event.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", m.path, err)
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var ev event.Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, &SourceError{
				Code:    ErrCodeEventParse,
				Message: fmt.Sprintf("invalid event record: %v", err),
				Path:    m.path,
				Line:    line,
			}
		}

		if err := ev.Validate(len(events)); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", m.path, line, err)
		}

		events = append(events, ev)
		if m.maxEvents > 0 && len(events) >= m.maxEvents {
			logger.Debug("event limit reached",
				slog.String("path", m.path),
				slog.Int("max_events", m.maxEvents),
			)
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &SourceError{
			Code:    ErrCodeFileReadFailed,
			Message: fmt.Sprintf("failed to read event file: %v", err),
			Path:    m.path,
			Line:    line,
		}
	}

	logger.Debug("jsonl source fetched events",
		slog.String("path", m.path),
		slog.Int("events", len(events)),
	)

	return events, nil
}

// Close releases resources (the file handle only lives inside Fetch).
func (m *JSONLModule) Close() error {
	return nil
}

// ParseJSONLConfig extracts a JSONLConfig from raw configuration.
func ParseJSONLConfig(config map[string]interface{}) (JSONLConfig, error) {
	cfg := JSONLConfig{}
	if v, ok := config["path"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return cfg, fmt.Errorf("path must be a string, got %T", v)
		}
		cfg.Path = s
	}
	if v, ok := config["maxEvents"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil {
			return cfg, fmt.Errorf("maxEvents: %w", err)
		}
		cfg.MaxEvents = n
	}
	return cfg, nil
}

// toInt converts a decoded JSON/YAML number to int.
func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

// Verify JSONLModule implements Module
var _ Module = (*JSONLModule)(nil)
