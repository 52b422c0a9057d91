package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/emilythestrangee/discuss/backend/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFailsWithoutDatabase(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Host: "127.0.0.1", Port: "1", User: "x", Password: "x", Name: "x", SSLMode: "disable", LogLevel: "silent",
	}}
	assert.Equal(t, 1, run(cfg, discardLogger()))
}

func TestRunReconcilesEmptyDatabase(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("discuss"),
		tcpostgres.WithUsername("discuss"),
		tcpostgres.WithPassword("discuss"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{Database: config.DatabaseConfig{
		Host: host, Port: port.Port(), User: "discuss", Password: "discuss", Name: "discuss",
		SSLMode: "disable", LogLevel: "silent", MaxIdleConns: 2, MaxOpenConns: 4,
	}}
	assert.Equal(t, 0, run(cfg, discardLogger()))
}
