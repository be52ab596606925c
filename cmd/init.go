package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbotsxyz/xcresult-annotate/internal/config"
)

var flagInitForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .xcresult-annotate/config.toml in the current directory",
	Long: `Create the .xcresult-annotate state directory with a documented config.toml.
The directory also holds the debug log and the run history.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&flagInitForce, "force", "f", false, "overwrite an existing config")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	ws, err := config.Init(cwd, flagInitForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", ws.ConfigPath())
	return nil
}
