package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbotsxyz/xcresult-annotate/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage history database migrations",
	Long:  `Manage the schema migrations of the run history database.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied migrations",
	Long:  `Show the migrations applied to the history database.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long:  `Apply all pending migrations. This happens automatically whenever a run is recorded, but can be run manually if needed.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback the last migration",
	Long: `Rollback the most recently applied migration of the history database.
The next recorded run, or "migrate up", applies it again.`,
	Args: cobra.NoArgs,
	RunE: runMigrateRollback,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
}

// openHistoryAsIs opens the existing history database without applying
// pending migrations.
func openHistoryAsIs() (*db.DB, error) {
	path, err := existingHistoryPath()
	if err != nil {
		return nil, err
	}
	return db.OpenExisting(path)
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	out := cmd.OutOrStdout()

	database, err := openHistoryAsIs()
	if errors.Is(err, errNoHistory) {
		fmt.Fprintln(out, "No migrations applied.")
		return nil
	}
	if err != nil {
		return err
	}
	defer database.Close()

	versions, err := db.MigrationStatus(ctx, database.DB)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(versions) == 0 {
		fmt.Fprintln(out, "No migrations applied.")
		return nil
	}

	fmt.Fprintf(out, "Applied migrations (%d):\n", len(versions))
	for _, version := range versions {
		fmt.Fprintf(out, "  %s\n", version)
	}
	return nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	ctx := GetContext()

	// Opening applies pending migrations and creates the database if needed.
	database, err := db.OpenPath(ctx, workspace.HistoryPath())
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	defer database.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "All migrations applied successfully.")
	return nil
}

func runMigrateRollback(cmd *cobra.Command, args []string) error {
	ctx := GetContext()

	database, err := openHistoryAsIs()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RollbackMigration(ctx, database.DB); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully.")
	return nil
}
