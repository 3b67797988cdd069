package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	exeSignature = []byte{0xC2, 0x08, 0x00, 0x6A, 0x08}
	dllSignature = []byte{0x8B, 0x44, 0x24, 0x04, 0x8B, 0x40, 0x1C, 0x85, 0xC0, 0x75}
)

// testInstall lays out a minimal installation under a temp dir and returns
// its root.
func testInstall(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	exe := bytes.Repeat([]byte{0xCC}, 1000)
	copy(exe[50:], exeSignature)
	dll := bytes.Repeat([]byte{0xCC}, 512)
	copy(dll[100:], dllSignature)

	writeTestFile(t, filepath.Join(bin, "trainz.exe"), exe)
	writeTestFile(t, filepath.Join(bin, "trainznativeinterface.dll"), dll)
	writeTestFile(t, filepath.Join(bin, "TrainzUtil.exe"), nil)
	return root
}

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// resetFlags restores package-level flag state between tests.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	logDir = ""
	configPath = ""
	acceptLicense = true
	sourceDir = "."
	dryRun = false
	atomicWrite = false
	syncWrite = false
	noVerify = false
	strictScan = false
	scanMask = ""
	scanStart = 0
	scanMaxScan = 0
	scanContext = 8
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large output cannot block the writer
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
