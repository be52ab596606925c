package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbotsxyz/xcresult-annotate/internal/config"
	"github.com/devbotsxyz/xcresult-annotate/internal/logging"
	"github.com/devbotsxyz/xcresult-annotate/internal/signal"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var (
	// rootCtx holds the signal-cancellable context for the application
	rootCtx    context.Context
	rootCancel context.CancelFunc

	// workspace is the configuration in effect for the current command
	workspace *config.Workspace

	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "xcresult-annotate",
	Short: "Annotate GitHub checks with diagnostics from Xcode result bundles",
	Long: `xcresult-annotate reads an Xcode result bundle (*.xcresult) and posts its
compiler warnings, and optionally errors, as annotations on a GitHub check run.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCtx, rootCancel = signal.WithSignalCancel(context.Background())

		ws, err := loadWorkspace(flagConfig)
		if err != nil {
			return err
		}
		workspace = ws

		stateDir := ""
		if ws.Found {
			stateDir = ws.StatePath()
		}
		if err := logging.Init(stateDir, flagVerbose); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
		}
		logging.Debug("command started", "command", cmd.Name(), "root", ws.Root, "configFound", ws.Found)
		return nil
	},
}

// Execute runs the root command and reports any error on stderr. The root
// context and the debug log are released whether or not the command failed.
func Execute() error {
	err := rootCmd.Execute()
	if rootCancel != nil {
		rootCancel()
	}
	if closeErr := logging.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close debug log: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// GetContext returns the root context that is cancelled on SIGINT/SIGTERM.
// This should be used by all subcommands instead of context.Background().
func GetContext() context.Context {
	if rootCtx == nil {
		return context.Background()
	}
	return rootCtx
}

// loadWorkspace loads the config named by --config, or finds one from the
// working directory.
func loadWorkspace(configPath string) (*config.Workspace, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Find(cwd)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .xcresult-annotate/config.toml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log to stderr instead of the debug log")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
}
