package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tzpatch/pkg/patch"
)

func TestRestoreCommand(t *testing.T) {
	resetFlags()
	root := testInstall(t)
	exe := filepath.Join(root, "bin", "trainz.exe")
	orig, err := os.ReadFile(exe)
	require.NoError(t, err)

	_, err = patch.Apply(exe, patch.TrainzExe(), nil)
	require.NoError(t, err)

	output, err := captureOutput(t, func() error {
		return runRestore([]string{root})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"Restored", "No backup for", "1 of 2 files restored"})

	got, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
	assert.NoFileExists(t, exe+".bak")
}

func TestManifestCommand(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, runManifest)
	require.NoError(t, err)
	assertContains(t, output, []string{"[[target]]", `signature = "C2 08 00 6A 08"`, "kuid:401543:1077"})
}

func TestRootCommandRoutesSubcommands(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{"scan", "--help"})
	_, err := captureOutput(t, func() error {
		return rootCmd.ExecuteContext(context.Background())
	})
	require.NoError(t, err)
}
