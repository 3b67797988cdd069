package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tzpatch/internal/install"
	"github.com/joshuapare/tzpatch/pkg/patch"
)

var (
	acceptLicense bool
	sourceDir     string
	dryRun        bool
	atomicWrite   bool
	syncWrite     bool
	noVerify      bool
	strictScan    bool
)

func addPatchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&acceptLicense, "accept-license", false, "Skip the license agreement prompt")
	cmd.Flags().
		StringVar(&sourceDir, "source-dir", ".", "Directory containing TNISpeedTree.dll and SpeedTreeLibrary.cdp")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Locate patch sites without writing anything")
	cmd.Flags().BoolVar(&atomicWrite, "atomic", false, "Write patched files via temp file and rename")
	cmd.Flags().BoolVar(&syncWrite, "sync", false, "Flush patched files to disk before returning")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip digest verification of backups")
	cmd.Flags().BoolVar(&strictScan, "strict", false, "Fail if a signature matches more than once")
}

type patchJSON struct {
	File        string `json:"file"`
	Backup      string `json:"backup"`
	Digest      string `json:"digest"`
	MatchOffset int    `json:"match_offset"`
	WriteOffset int    `json:"write_offset"`
	Length      int    `json:"length"`
	DryRun      bool   `json:"dry_run"`
}

type reportJSON struct {
	Patches       []patchJSON `json:"patches"`
	PluginCopied  bool        `json:"plugin_copied"`
	AssetReplaced bool        `json:"asset_replaced"`
}

func runPatch(ctx context.Context, args []string) error {
	root := args[0]
	printVerbose("Installation: %s\n", root)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strictScan {
		for i := range cfg.Targets {
			cfg.Targets[i].Strict = true
		}
	}

	// Keep stdout clean for JSON; prompts and notices still reach the user.
	out := os.Stdout
	if jsonOut || quiet {
		out = os.Stderr
	}

	report, err := install.Run(ctx, install.Options{
		Root:          root,
		SourceDir:     sourceDir,
		AcceptLicense: acceptLicense,
		Config:        cfg,
		Patch: patch.Options{
			Atomic:   atomicWrite,
			Sync:     syncWrite,
			NoVerify: noVerify,
			DryRun:   dryRun,
		},
		In:  os.Stdin,
		Out: out,
	})
	if report != nil && !jsonOut {
		for _, res := range report.Patches {
			if verbose {
				printVerbose("%s", res)
				continue
			}
			printInfo("Patched %s at 0x%08X (%d bytes)\n", res.Path, res.WriteOffset, len(res.Replaced))
		}
	}
	if err != nil {
		return err
	}

	if jsonOut {
		rj := reportJSON{PluginCopied: report.PluginCopied, AssetReplaced: report.AssetReplaced}
		for _, res := range report.Patches {
			rj.Patches = append(rj.Patches, patchJSON{
				File:        res.Path,
				Backup:      res.BackupPath,
				Digest:      res.BackupDigest.String(),
				MatchOffset: res.MatchOffset,
				WriteOffset: res.WriteOffset,
				Length:      len(res.Replaced),
				DryRun:      res.DryRun,
			})
		}
		return printJSON(rj)
	}

	if dryRun {
		printInfo("Dry run complete, nothing was written.\n")
		return nil
	}
	printInfo("Patching complete!\n")
	return nil
}
