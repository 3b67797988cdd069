package patch

import (
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// DefaultBackupSuffix is appended to a target path to form its backup path.
const DefaultBackupSuffix = ".bak"

// BackupPath returns the backup location for path.
func BackupPath(path, suffix string) string {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	return path + suffix
}

// HasBackup reports whether a backup exists for path.
func HasBackup(path, suffix string) bool {
	return fileExists(BackupPath(path, suffix))
}

// Restore moves the backup for path back over path, leaving the backup slot
// empty. It fails with ErrNoBackup when there is nothing to restore.
func Restore(path string, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	backup := BackupPath(path, opts.BackupSuffix)
	restored, err := restoreBackup(path, backup)
	if err != nil {
		return &Error{Path: path, Op: "restore", Err: err}
	}
	if !restored {
		return &Error{Path: path, Op: "restore", Err: ErrNoBackup}
	}
	opts.logger().Info("restored original", "file", path, "backup", backup)
	return nil
}

// restoreBackup renames backup over path if backup exists.
func restoreBackup(path, backup string) (bool, error) {
	if !fileExists(backup) {
		return false, nil
	}
	if err := os.Rename(backup, path); err != nil {
		return false, fmt.Errorf("failed to restore %s: %w", backup, err)
	}
	return true, nil
}

// takeBackup copies path to backup and returns the digest of the copied
// bytes. With verify set the backup is re-read and compared.
func takeBackup(path, backup string, verify bool) (digest.Digest, error) {
	want, err := copyFile(path, backup)
	if err != nil {
		return "", fmt.Errorf("failed to create backup at %s: %w", backup, err)
	}
	if !verify {
		return want, nil
	}
	got, err := digestFile(backup)
	if err != nil {
		return "", fmt.Errorf("failed to verify backup %s: %w", backup, err)
	}
	if got != want {
		return "", &BackupError{Backup: backup, Want: want, Got: got}
	}
	return want, nil
}

// copyFile copies a file from src to dst, keeping the permission bits, and
// returns the digest of the copied content.
func copyFile(src, dst string) (digest.Digest, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	d := digest.Canonical.Digester()
	if _, copyErr := io.Copy(io.MultiWriter(dstFile, d.Hash()), srcFile); copyErr != nil {
		return "", fmt.Errorf("failed to copy data: %w", copyErr)
	}

	return d.Digest(), dstFile.Close()
}

func digestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.FromReader(f)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
