// Command reconcile recomputes every post and comment vote counter from the
// stored vote rows and reports how many had drifted.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emilythestrangee/discuss/backend/internal/config"
	"github.com/emilythestrangee/discuss/backend/internal/database"
	"github.com/emilythestrangee/discuss/backend/internal/discussion"
	"github.com/emilythestrangee/discuss/backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}
	os.Exit(run(cfg, logger.New(os.Stdout, cfg.LogLevel)))
}

// run returns the process exit code; deferred cleanup finishes before main exits.
func run(cfg *config.Config, logg *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database, logg)
	if err != nil {
		logg.Error("failed to connect to database", "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Error("failed to close database", "error", err)
		}
	}()

	gdb := db.GetDB()
	ledger := discussion.NewLedger(gdb, discussion.NewTeams(gdb), logg)
	drifted, err := ledger.ReconcileAll(ctx)
	if err != nil {
		logg.Error("reconcile failed", "error", err, "drifted", drifted)
		return 1
	}
	logg.Info("reconcile finished", "drifted", drifted)
	return 0
}
