package patch

import (
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
)

var (
	// ErrSpanOutOfRange means the replacement would extend past the file
	// or start before it.
	ErrSpanOutOfRange = errors.New("write span out of range")

	// ErrNoBackup is returned by Restore when no backup exists.
	ErrNoBackup = errors.New("no backup present")

	// ErrBackupMismatch means the backup copy does not match the target.
	ErrBackupMismatch = errors.New("backup does not match original")

	// ErrEmptyReplacement means a patch carries no replacement bytes.
	ErrEmptyReplacement = errors.New("empty replacement")
)

// Error wraps a failure in one step of a patch operation.
type Error struct {
	Path  string // Target file
	Patch string // Patch name, may be empty
	Op    string // "validate", "restore", "backup", "read", "scan", "bounds", "write"
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Patch != "" {
		return fmt.Sprintf("patch %s: %s %s: %v", e.Patch, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("patch: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// BackupError reports a backup whose content differs from the file it was
// copied from.
type BackupError struct {
	Backup string
	Want   digest.Digest // Digest of the target
	Got    digest.Digest // Digest of the backup
}

// Error implements the error interface.
func (e *BackupError) Error() string {
	return fmt.Sprintf("%s: %s has %s, want %s", ErrBackupMismatch, e.Backup, e.Got, e.Want)
}

// Unwrap returns ErrBackupMismatch.
func (e *BackupError) Unwrap() error {
	return ErrBackupMismatch
}
