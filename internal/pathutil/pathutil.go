// Package pathutil provides shared path validation helpers for the
// file-facing modules (event files, script files, plot and csv outputs).
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilePath validates a file path for path traversal and invalid characters.
// Uses segment-based detection so that "scripts/../etc/passwd" is rejected before
// cleaning (cleaned path would be "etc/passwd" and could bypass a simple ".." check).
// Returns an error if the path is empty, contains null bytes, or has ".." in any segment.
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(filePath, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}

	normalized := filepath.ToSlash(filePath)
	segments := strings.Split(normalized, "/")
	for _, segment := range segments {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", filePath)
		}
	}
	if strings.HasPrefix(normalized, "../") || normalized == ".." {
		return fmt.Errorf("file path contains path traversal: %q", filePath)
	}
	return nil
}

// EnsureParentDir creates the parent directory of an output file path if
// it does not exist yet.
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "/" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}
