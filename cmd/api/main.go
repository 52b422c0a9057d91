package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/discuss/backend/internal/config"
	"github.com/emilythestrangee/discuss/backend/internal/logger"
	"github.com/emilythestrangee/discuss/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logg := logger.New(os.Stdout, cfg.LogLevel)
	if logger.ParseLevel(cfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logg)
	if err != nil {
		logg.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	httpServer := srv.HTTPServer()
	go func() {
		logg.Info("server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", "error", err)
	}
	logg.Info("server stopped")
}
