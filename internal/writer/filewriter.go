// Package writer exposes sinks for writing a patched image back to disk.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives the full patched image of one target file.
type Sink interface {
	WriteImage(buf []byte) error
}

// FileWriter writes image bytes to a filesystem path atomically.
type FileWriter struct {
	Path string
	Sync bool // flush file data to stable storage before rename
}

// WriteImage writes buf to the configured path atomically via temp file + rename.
// The permission bits of an existing file at Path are carried over.
func (w *FileWriter) WriteImage(buf []byte) error {
	// Create temp file in same directory to ensure atomic rename
	dir := filepath.Dir(w.Path)
	tmpFile, err := os.CreateTemp(dir, ".tzpatch-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if info, statErr := os.Stat(w.Path); statErr == nil {
		if chmodErr := tmpFile.Chmod(info.Mode().Perm()); chmodErr != nil {
			return fmt.Errorf("chmod temp file: %w", chmodErr)
		}
	}

	if _, writeErr := tmpFile.Write(buf); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}

	if w.Sync {
		if syncErr := syncFile(tmpFile); syncErr != nil {
			return fmt.Errorf("sync temp file: %w", syncErr)
		}
	}

	// Close before rename
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil // Don't clean up in defer

	if renameErr := os.Rename(tmpPath, w.Path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}

	return nil
}

// InPlaceWriter overwrites an already-open file starting at offset 0 without
// truncating it, so any bytes past len(buf) are preserved. The caller owns
// File and closes it.
type InPlaceWriter struct {
	File *os.File
	Sync bool
}

// WriteImage writes buf over the start of File.
func (w *InPlaceWriter) WriteImage(buf []byte) error {
	if _, err := w.File.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("write at 0: %w", err)
	}
	if w.Sync {
		if err := syncFile(w.File); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}
	return nil
}
