package main

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tzpatch/pkg/patch"
)

func init() {
	rootCmd.AddCommand(newRestoreCmd())
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <trainz_path>",
		Short: "Restore patched files from their backups",
		Long: `The restore command moves each target's backup back over the patched file,
returning the installation to its original binaries. Targets without a backup
are left alone.

Example:
  tzpatch restore "C:\Program Files\Trainz"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(args)
		},
	}
	return cmd
}

func runRestore(args []string) error {
	root := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := &patch.Options{BackupSuffix: cfg.BackupSuffix}
	var restored int
	for _, t := range cfg.Targets {
		path := filepath.Join(root, t.Path)
		err := patch.Restore(path, opts)
		switch {
		case errors.Is(err, patch.ErrNoBackup):
			printInfo("No backup for %s\n", path)
		case err != nil:
			return err
		default:
			restored++
			printInfo("Restored %s\n", path)
		}
	}
	printInfo("%d of %d files restored\n", restored, len(cfg.Targets))
	return nil
}
