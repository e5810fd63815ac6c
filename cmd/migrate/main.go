package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jobportal/internal/config"
	"jobportal/internal/database"
	"jobportal/internal/log"
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the job portal database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runUp,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they have been applied",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*pgxpool.Pool, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := log.New(cfg.Environment, cfg.Logging.Level)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, "jobportal-migrate")
	if err != nil {
		return nil, logger, err
	}
	return pool, logger, nil
}

func runUp(cmd *cobra.Command, _ []string) error {
	pool, logger, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	return database.Migrate(cmd.Context(), pool, logger)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pool, _, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	statuses, err := database.Status(cmd.Context(), pool)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%t\n", s.Version, s.Name, s.Applied)
	}
	return w.Flush()
}
