package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "trainz.exe")
	content := []byte("MZ\x90\x00pristine")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	d, err := takeBackup(src, src+".bak", true)
	require.NoError(t, err)
	assert.Equal(t, digest.FromBytes(content), d)
	assert.Equal(t, content, readFile(t, src+".bak"))
}

func TestTakeBackup_OverwritesStaleBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "lib.dll")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(src+".bak", []byte("stale and longer"), 0o644))

	_, err := takeBackup(src, src+".bak", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), readFile(t, src+".bak"))
}

func TestRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.dll")
	require.NoError(t, os.WriteFile(path, []byte("patched"), 0o644))

	restored, err := restoreBackup(path, path+".bak")
	require.NoError(t, err)
	assert.False(t, restored)

	require.NoError(t, os.WriteFile(path+".bak", []byte("original"), 0o644))
	restored, err = restoreBackup(path, path+".bak")
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, []byte("original"), readFile(t, path))
	assert.NoFileExists(t, path+".bak")
}

func TestBackupPath(t *testing.T) {
	assert.Equal(t, "a/trainz.exe.bak", BackupPath("a/trainz.exe", ""))
	assert.Equal(t, "a/trainz.exe.orig", BackupPath("a/trainz.exe", ".orig"))
}
