package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/discuss/backend/internal/config"
	"github.com/emilythestrangee/discuss/backend/internal/models"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health reports "status" as "up" or "down" plus pool statistics.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db   *gorm.DB
	name string
	log  *slog.Logger
}

// New opens the connection, runs migrations and tunes the pool.
func New(cfg config.DatabaseConfig, log *slog.Logger) (Service, error) {
	db, err := Open(cfg.DSN(), cfg.LogLevel, log)
	if err != nil {
		return nil, err
	}

	log.Info("database connected", "host", cfg.Host, "name", cfg.Name)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database migrations completed")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &service{db: db, name: cfg.Name, log: log}, nil
}

// Open connects to postgres with the gorm logger routed through slog.
func Open(dsn, level string, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelDebug),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	)
	if err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health pings the database and reports pool statistics. The ping is
// bounded by a five second timeout on top of ctx.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Warn("database health check failed", "error", err)
		return map[string]string{"status": "down", "error": err.Error()}
	}

	pool := sqlDB.Stats()
	return map[string]string{
		"status":           "up",
		"database":         s.name,
		"open_connections": strconv.Itoa(pool.OpenConnections),
		"in_use":           strconv.Itoa(pool.InUse),
		"idle":             strconv.Itoa(pool.Idle),
		"wait_count":       strconv.FormatInt(pool.WaitCount, 10),
	}
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.log.Info("disconnected from database", "name", s.name)
	return sqlDB.Close()
}
