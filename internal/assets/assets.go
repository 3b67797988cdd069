// Package assets drives the host application's asset-management tool.
//
// The workflow only needs three capabilities, captured by Tool, so the patch
// logic can be exercised without a real installation.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Tool deletes, installs and commits content packages by KUID.
type Tool interface {
	// Delete removes the asset with the given KUID from the local database.
	Delete(ctx context.Context, kuid string) error
	// InstallCDP installs the content package at path. It must be absolute.
	InstallCDP(ctx context.Context, path string) error
	// Commit commits the asset with the given KUID.
	Commit(ctx context.Context, kuid string) error
}

var (
	// ErrToolNotFound means the asset tool executable is missing.
	ErrToolNotFound = errors.New("asset tool not found")

	// ErrTool is matched by every *ToolError.
	ErrTool = errors.New("asset tool failed")
)

// ToolError is a failed asset tool invocation.
type ToolError struct {
	Command string
	Args    []string
	Output  string // Decoded combined output
	Err     error  // Exit error, if the process itself failed
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := firstErrorLine(e.Output)
	switch {
	case e.Err != nil && msg != "":
		return fmt.Sprintf("%s %s: %v: %s", e.Command, strings.Join(e.Args, " "), e.Err, msg)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Command, strings.Join(e.Args, " "), e.Err)
	default:
		return fmt.Sprintf("%s %s: %s", e.Command, strings.Join(e.Args, " "), msg)
	}
}

// Unwrap returns the process error, if any.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// Is reports ErrTool for every ToolError.
func (e *ToolError) Is(target error) bool {
	return target == ErrTool
}

// firstErrorLine returns the first line flagged as an error by the tool, or
// the last non-empty line when none is flagged.
func firstErrorLine(out string) string {
	var last string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") {
			return strings.TrimSpace(strings.TrimPrefix(line, "-"))
		}
		last = line
	}
	return last
}

// hasErrorLine reports whether the tool flagged any output line as an error.
func hasErrorLine(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-") {
			return true
		}
	}
	return false
}
