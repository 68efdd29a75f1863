package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietddude/settler/internal/infra/storage/postgres"
)

var purgeCmd = &cobra.Command{
	Use:   "purge [days]",
	Short: "Delete settlements older than the given number of days",
	Args:  cobra.ExactArgs(1),
	Run:   runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) {
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		fmt.Printf("Invalid day count: %v\n", args[0])
		os.Exit(1)
	}

	cfg := loadConfig()

	if cfg.Database.URL == "" {
		slog.Error("purge requires a configured database")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	deleted, err := postgres.NewSettlementRepo(db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to purge settlements", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d settlements older than %s\n", deleted, cutoff.Format(time.RFC3339))
}
