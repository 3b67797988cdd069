package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joshuapare/tzpatch/internal/config"
	"github.com/joshuapare/tzpatch/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	logDir     string
	configPath string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "tzpatch <trainz_path>",
	Short: "Patch a Trainz installation so the SpeedTree plugin loads",
	Long: `tzpatch locates known byte signatures in the Trainz executable and native
interface library and rewrites them in place, keeping a .bak copy of each
original. It then installs the SpeedTree plugin and replaces the SpeedTree
library asset through TrainzUtil.

Running it again restores each original from its backup before patching, so
repeated runs always produce the same result.`,
	Version:           "0.1.0",
	Args:              cobra.ExactArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPatch(cmd.Context(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write JSON logs to this directory")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Patch manifest (TOML); built-in Trainz manifest if empty")
	addPatchFlags(rootCmd)
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		printError("%v\n", err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	opts := logger.Options{
		Enabled: verbose || logDir != "",
		LogDir:  logDir,
		Level:   slog.LevelInfo,
	}
	if verbose && !quiet {
		opts.Console = os.Stderr
		opts.Level = slog.LevelDebug
	}
	closer, err := logger.Init(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	closeLog = closer
	return nil
}

// loadConfig returns the manifest named by --config, or the built-in one.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	printVerbose("Loading manifest: %s\n", configPath)
	return config.LoadFile(configPath)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
