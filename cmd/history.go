package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbotsxyz/xcresult-annotate/internal/db"
	"github.com/devbotsxyz/xcresult-annotate/internal/render"
)

var (
	flagHistoryLimit  int
	flagHistoryFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded annotate runs",
	Long: `List the annotate runs recorded in .xcresult-annotate/history.db, most
recent first. Runs are recorded once "xcresult-annotate init" has created the
state directory.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Long: `Show a recorded run with its bundles. The id may be shortened to any
prefix that matches a single run, such as the eight characters "history" prints.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&flagHistoryFormat, "format", "f", "text", "output format: text, json or yaml")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "maximum number of runs to show (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
}

// errNoHistory is returned by openHistory when nothing has been recorded yet.
var errNoHistory = errors.New("no run history recorded")

// existingHistoryPath returns the workspace history database path, or
// errNoHistory when the database has not been created yet.
func existingHistoryPath() (string, error) {
	path := workspace.HistoryPath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s does not exist", errNoHistory, path)
	}
	return path, nil
}

// openHistory opens the workspace history database without creating it.
func openHistory(ctx context.Context) (*db.DB, error) {
	path, err := existingHistoryPath()
	if err != nil {
		return nil, err
	}
	database, err := db.OpenPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return database, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(flagHistoryFormat)
	if err != nil {
		return err
	}

	ctx := GetContext()
	database, err := openHistory(ctx)
	if errors.Is(err, errNoHistory) {
		return render.History(cmd.OutOrStdout(), nil, format, render.DefaultWidth)
	}
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, flagHistoryLimit)
	if err != nil {
		return err
	}
	return render.History(cmd.OutOrStdout(), runs, format, render.DefaultWidth)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(flagHistoryFormat)
	if err != nil {
		return err
	}

	ctx := GetContext()
	database, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetRun(ctx, args[0])
	if err != nil {
		return err
	}
	return render.Run(cmd.OutOrStdout(), run, format, render.DefaultWidth)
}
