package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kanade-dev/extrepo/database"
	"github.com/kanade-dev/extrepo/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long: `Apply or revert the database migrations embedded in the binary.
The connection parameters come from the database section of the config file
and the EXTREPO_DATABASE_* environment variables.`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		RunE:  runMigrateUp,
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert database migrations",
		Long: `Revert the given number of migrations. With --steps 0 every migration is
reverted and all stored repositories are lost.`,
		RunE: runMigrateDown,
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().Int("steps", 1, "Number of migrations to revert (0 reverts all)")
	return cmd
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, connString, err := migrationTarget(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := database.Version(connString)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return err
		},
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	cfg, connString, err := migrationTarget(cmd)
	if err != nil {
		return err
	}

	ok, err := confirm(cmd, fmt.Sprintf("About to apply migrations to %s", describeDatabase(cfg.Database)))
	if err != nil || !ok {
		return err
	}

	slog.Info("Applying database migrations")
	if err := database.MigrateUp(connString); err != nil {
		return err
	}
	logVersion(connString)
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	cfg, connString, err := migrationTarget(cmd)
	if err != nil {
		return err
	}

	steps, err := cmd.Flags().GetInt("steps")
	if err != nil {
		return fmt.Errorf("failed to get steps flag: %w", err)
	}

	prompt := fmt.Sprintf("About to revert %d migration(s) on %s", steps, describeDatabase(cfg.Database))
	if steps <= 0 {
		prompt = fmt.Sprintf("About to revert ALL migrations on %s", describeDatabase(cfg.Database))
	}
	ok, err := confirm(cmd, prompt)
	if err != nil || !ok {
		return err
	}

	slog.Info("Reverting database migrations", "steps", steps)
	if err := database.MigrateDown(connString, steps); err != nil {
		return err
	}
	logVersion(connString)
	return nil
}

func migrationTarget(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if cfg.Database == nil {
		return nil, "", fmt.Errorf("database configuration is required")
	}
	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get connection string: %w", err)
	}
	return cfg, connString, nil
}

// confirm asks for a yes/no answer on the command's input unless --yes was passed
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return false, fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return true, nil
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\nContinue? (yes/no): ", prompt); err != nil {
		return false, err
	}
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true, nil
	default:
		slog.Info("Migration cancelled by user")
		return false, nil
	}
}

func describeDatabase(db *config.DatabaseConfig) string {
	return fmt.Sprintf("%s@%s:%d/%s", db.User, db.Host, db.Port, db.Database)
}

func logVersion(connString string) {
	version, dirty, err := database.Version(connString)
	switch {
	case err != nil:
		slog.Warn("Unable to get migration version", "error", err)
	case dirty:
		slog.Warn("Database is in a dirty state", "version", version)
	default:
		slog.Info("Migrations applied", "version", version)
	}
}
