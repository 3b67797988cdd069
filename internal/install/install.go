// Package install runs the full enable-plugin workflow against an
// installation: license, binary patches, plugin copy and asset replacement.
//
// Steps run in order and the first fatal error aborts the rest. Completed
// steps are not rolled back; a later failure leaves earlier files patched.
package install

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/tzpatch/internal/assets"
	"github.com/joshuapare/tzpatch/internal/config"
	"github.com/joshuapare/tzpatch/internal/logger"
	"github.com/joshuapare/tzpatch/pkg/patch"
)

// ErrLicenseDeclined is returned when the user does not answer "Y".
var ErrLicenseDeclined = errors.New("license agreement not accepted")

// StepError identifies the workflow step that failed.
type StepError struct {
	Step string // "tool", "license", "patch", "plugin", "asset"
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Options configures Run.
type Options struct {
	Root          string // Installation root
	SourceDir     string // Directory holding the plugin and asset package; defaults to "."
	AcceptLicense bool
	Config        config.Config
	Patch         patch.Options

	// Tool defaults to TrainzUtil found at Config.Asset.Tool under Root.
	Tool assets.Tool

	In  io.Reader // License answer; defaults to os.Stdin
	Out io.Writer // Prompts and notices; defaults to os.Stdout
}

// Report summarizes a run.
type Report struct {
	Patches       []*patch.Result
	PluginCopied  bool
	PluginPresent bool // Already installed, copy skipped
	PluginMissing string
	AssetDeleted  bool
	AssetReplaced bool
}

// Run executes the workflow.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.SourceDir == "" {
		opts.SourceDir = "."
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Patch.BackupSuffix == "" {
		opts.Patch.BackupSuffix = opts.Config.BackupSuffix
	}
	cfg := opts.Config
	report := &Report{}

	// Definition errors surface before any file is touched.
	patches, err := cfg.Patches()
	if err != nil {
		return report, &StepError{Step: "patch", Msg: "invalid patch definition", Err: err}
	}

	tool := opts.Tool
	if tool == nil {
		tu, err := assets.NewTrainzUtil(opts.Root, cfg.Asset.Tool)
		if err != nil {
			return report, &StepError{Step: "tool", Msg: fmt.Sprintf("%s not found at: %s", filepath.Base(cfg.Asset.Tool), opts.Root), Err: err}
		}
		tool = tu
	}

	if !opts.AcceptLicense {
		if err := promptLicense(opts.In, opts.Out); err != nil {
			return report, &StepError{Step: "license", Msg: "license", Err: err}
		}
	}

	for i, p := range patches {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path := filepath.Join(opts.Root, cfg.Targets[i].Path)
		res, err := patch.Apply(path, p, &opts.Patch)
		if err != nil {
			return report, &StepError{Step: "patch", Msg: "failed to patch " + p.Name, Err: err}
		}
		report.Patches = append(report.Patches, res)
	}

	if opts.Patch.DryRun {
		fmt.Fprintf(opts.Out, "Dry run: skipping plugin copy and asset %s\n", cfg.Asset.KUID)
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if err := copyPlugin(opts, report); err != nil {
		return report, &StepError{Step: "plugin", Msg: "Failed to copy " + cfg.Plugin.Name, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if err := replaceAsset(ctx, tool, opts, report); err != nil {
		return report, &StepError{Step: "asset", Msg: "Failed to commit " + cfg.Asset.KUID, Err: err}
	}

	return report, nil
}

func promptLicense(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "You must accept the license agreement before running this patcher!")
	fmt.Fprintln(out, "Do you accept the license agreement? (Y/n)")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if strings.TrimRight(line, "\r\n") != "Y" {
		return ErrLicenseDeclined
	}
	return nil
}

// copyPlugin installs the plugin unless it is already present. A missing
// source file is reported and skipped.
func copyPlugin(opts Options, report *Report) error {
	name := opts.Config.Plugin.Name
	dst := filepath.Join(opts.Root, opts.Config.Plugin.Dir, name)
	if fileExists(dst) {
		report.PluginPresent = true
		logger.Debug("plugin already installed", "path", dst)
		return nil
	}

	src := filepath.Join(opts.SourceDir, name)
	if !fileExists(src) {
		report.PluginMissing = src
		fmt.Fprintf(opts.Out, "%s not found at: %s\n", name, src)
		logger.Warn("plugin source missing", "path", src)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	report.PluginCopied = true
	logger.Info("plugin copied", "src", src, "dst", dst)
	return nil
}

// replaceAsset deletes the stale asset, then installs and commits the
// shipped package. A failed delete is logged and ignored since the asset may
// not be installed yet.
func replaceAsset(ctx context.Context, tool assets.Tool, opts Options, report *Report) error {
	kuid := opts.Config.Asset.KUID
	if err := tool.Delete(ctx, kuid); err != nil {
		logger.Warn("asset delete failed", "kuid", kuid, "err", err)
	} else {
		report.AssetDeleted = true
	}

	pkg, err := filepath.Abs(filepath.Join(opts.SourceDir, opts.Config.Asset.Package))
	if err != nil {
		return err
	}
	if err := tool.InstallCDP(ctx, pkg); err != nil {
		return err
	}
	if err := tool.Commit(ctx, kuid); err != nil {
		return err
	}
	report.AssetReplaced = true
	logger.Info("asset replaced", "kuid", kuid, "package", pkg)
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer dstFile.Close()

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		return fmt.Errorf("failed to copy data: %w", copyErr)
	}

	return dstFile.Close()
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
