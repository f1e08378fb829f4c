// Package store persists the advisor's three durable artifacts: the
// result cache, the training dataset and the trained model. Each file
// is read fully at startup and rewritten in full on mutation; each has
// a single-writer mutex so concurrent writers cannot interleave.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const currentVersion = 1

// writeFileAtomic writes through a temp file and renames it into place
// so a crash mid-write never leaves a torn file behind.
func writeFileAtomic(dir, name string, write func(io.Writer) error) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	filePath := filepath.Join(dir, name)
	tempPath := filePath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
