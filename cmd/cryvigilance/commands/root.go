// Package commands implements the cryvigilance CLI.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

var (
	// Global flags
	storePath string
	signalDir string
	verbose   bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit string) error {
	rootCmd := newRootCommand(version, commit)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cryvigilance",
		Short: "CryVigilance - reactive typed property engine",
		Long: `CryVigilance maintains a registry of declaratively defined properties,
persists their values to a section-grouped store file, derives widget
visibility from inter-property dependencies, and notifies subscribers
on change.

The run command hosts the interactive panel; the remaining commands
operate on the persisted store from the shell.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", "", "store file path")
	rootCmd.PersistentFlags().StringVar(&signalDir, "signal-dir", defaultSignalDir(), "signal bus directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newGetCommand())
	rootCmd.AddCommand(newSetCommand())
	rootCmd.AddCommand(newResetCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newOpenCommand())

	return rootCmd
}

// cliLogger keeps the one-shot commands quiet unless asked.
func cliLogger() telemetry.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return telemetry.NewLogger(telemetry.LoggerConfig{Level: level, Console: true})
}

// hostLogger is chattier; the run command owns the terminal anyway,
// so it logs to a file beside the store instead of the screen.
func hostLogger() (telemetry.Logger, func(), error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	path := resolveStorePath() + ".log"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return telemetry.Logger{}, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	log := telemetry.NewLogger(telemetry.LoggerConfig{Level: level, Output: f})
	return log, func() { f.Close() }, nil
}

func resolveStorePath() string {
	if storePath != "" {
		return storePath
	}
	return props.DefaultStorePath()
}

func defaultSignalDir() string {
	return filepath.Join(os.TempDir(), "cryvigilance-signals")
}

// buildEngine assembles an engine over the built-in property set. The
// store directory is created here; the engine itself treats a missing
// directory as a retryable save failure.
func buildEngine(log telemetry.Logger, opts ...props.Option) (*props.Engine, error) {
	path := resolveStorePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	opts = append([]props.Option{
		props.WithStorePath(path),
		props.WithLogger(log),
	}, opts...)
	eng := props.New(opts...)
	if err := registerBuiltins(eng); err != nil {
		return nil, err
	}
	return eng, nil
}
