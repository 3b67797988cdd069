package assets

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/joshuapare/tzpatch/internal/logger"
)

// TrainzUtil runs TrainzUtil.exe. Each call starts one process and waits
// for it to exit.
type TrainzUtil struct {
	Exe string

	// command builds the process; replaced in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewTrainzUtil returns a TrainzUtil for the executable at exe, which is
// resolved relative to root when not absolute.
func NewTrainzUtil(root, exe string) (*TrainzUtil, error) {
	if !filepath.IsAbs(exe) {
		exe = filepath.Join(root, exe)
	}
	info, err := os.Stat(exe)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, exe)
	}
	return &TrainzUtil{Exe: exe, command: exec.CommandContext}, nil
}

// Delete implements Tool.
func (t *TrainzUtil) Delete(ctx context.Context, kuid string) error {
	return t.run(ctx, "delete", kuid)
}

// InstallCDP implements Tool.
func (t *TrainzUtil) InstallCDP(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return t.run(ctx, "installCDP", abs)
}

// Commit implements Tool.
func (t *TrainzUtil) Commit(ctx context.Context, kuid string) error {
	return t.run(ctx, "commit", kuid)
}

func (t *TrainzUtil) run(ctx context.Context, args ...string) error {
	cmdFn := t.command
	if cmdFn == nil {
		cmdFn = exec.CommandContext
	}
	cmd := cmdFn(ctx, t.Exe, args...)
	cmd.Dir = filepath.Dir(t.Exe)

	logger.Debug("running asset tool", "exe", t.Exe, "args", args)
	raw, err := cmd.CombinedOutput()
	out := decodeOutput(raw)
	if err != nil || hasErrorLine(out) {
		logger.Warn("asset tool failed", "args", args, "err", err, "output", out)
		return &ToolError{Command: filepath.Base(t.Exe), Args: args, Output: out, Err: err}
	}
	logger.Debug("asset tool finished", "args", args, "output", out)
	return nil
}
