// Package persistence stores per-pipeline run records on disk.
// The CLI saves a record after each execution so later invocations can
// show when a pipeline last ran and what it produced.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ptflow/runtime/internal/logger"
	"github.com/ptflow/runtime/pkg/analysis"
)

// DefaultStatePath is the default directory for run record files.
const DefaultStatePath = "./ptflow-data/runs"

// Common errors
var (
	// ErrInvalidPipelineID is returned when the pipeline ID is empty.
	ErrInvalidPipelineID = errors.New("pipeline ID is required")

	// ErrNilRecord is returned when the record is nil.
	ErrNilRecord = errors.New("run record is nil")
)

// RunRecord captures the outcome of a pipeline execution.
type RunRecord struct {
	// PipelineID is the unique identifier for the pipeline.
	PipelineID string `json:"pipelineId"`

	// Status is the final execution status ("success", "error").
	Status string `json:"status"`

	// StartedAt and CompletedAt bound the execution.
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`

	// EventsRead is the number of events fetched from the source.
	EventsRead int `json:"eventsRead"`

	// CandidatesSeen is the total candidate count across all events.
	CandidatesSeen int `json:"candidatesSeen"`

	// CandidatesSelected is the number of candidates passing the cut.
	CandidatesSelected int `json:"candidatesSelected"`

	// DryRun indicates the execution made no sink writes.
	DryRun bool `json:"dryRun,omitempty"`

	// UpdatedAt is when this record was written.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRunRecord builds a record from an execution result.
func NewRunRecord(result *analysis.ExecutionResult, dryRun bool) *RunRecord {
	if result == nil {
		return nil
	}
	return &RunRecord{
		PipelineID:         result.PipelineID,
		Status:             result.Status,
		StartedAt:          result.StartedAt,
		CompletedAt:        result.CompletedAt,
		EventsRead:         result.EventsRead,
		CandidatesSeen:     result.CandidatesSeen,
		CandidatesSelected: result.CandidatesSelected,
		DryRun:             dryRun,
	}
}

// RunStore provides thread-safe persistence of run records.
// Records are stored as JSON files, one per pipeline, in the base path.
type RunStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewRunStore creates a RunStore rooted at basePath.
// An empty basePath uses DefaultStatePath.
func NewRunStore(basePath string) *RunStore {
	if basePath == "" {
		basePath = DefaultStatePath
	}
	return &RunStore{basePath: basePath}
}

// filePath returns the record file path for a pipeline.
// The ID is reduced to its base name so it cannot escape the store.
func (s *RunStore) filePath(pipelineID string) string {
	return filepath.Join(s.basePath, filepath.Base(pipelineID)+".json")
}

// Save persists the run record for a pipeline.
// The write is atomic (temp file + rename) so a crash mid-write never
// leaves a truncated record behind.
func (s *RunStore) Save(pipelineID string, record *RunRecord) error {
	if pipelineID == "" {
		return ErrInvalidPipelineID
	}
	if record == nil {
		return ErrNilRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return fmt.Errorf("creating run record directory: %w", err)
	}

	record.PipelineID = pipelineID
	record.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}

	filePath := s.filePath(pipelineID)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("writing temp run record: %w", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming run record: %w", err)
	}

	logger.Debug("run record saved",
		"pipeline_id", pipelineID,
		"path", filePath,
		"status", record.Status,
	)
	return nil
}

// Load retrieves the last run record for a pipeline.
// Returns nil, nil when no record exists (the pipeline never ran).
func (s *RunStore) Load(pipelineID string) (*RunRecord, error) {
	if pipelineID == "" {
		return nil, ErrInvalidPipelineID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.filePath(pipelineID)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading run record: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling run record: %w", err)
	}
	return &record, nil
}

// Delete removes the run record for a pipeline.
// Returns nil if no record exists.
func (s *RunStore) Delete(pipelineID string) error {
	if pipelineID == "" {
		return ErrInvalidPipelineID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(pipelineID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting run record: %w", err)
	}
	return nil
}

// Exists reports whether a run record exists for a pipeline.
func (s *RunStore) Exists(pipelineID string) (bool, error) {
	if pipelineID == "" {
		return false, ErrInvalidPipelineID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.filePath(pipelineID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking run record: %w", err)
	}
	return true, nil
}
