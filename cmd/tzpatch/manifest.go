package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tzpatch/internal/config"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "manifest",
		Short: "Print the active patch manifest as TOML",
		Long: `The manifest command prints the built-in manifest, or the one given with
--config after validation. Save the output to start a custom manifest.

Example:
  tzpatch manifest > tzpatch.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest()
		},
	})
}

func runManifest() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return config.Save(cfg, os.Stdout)
}
