package db

import (
	"fmt"
	"strings"

	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// New opens the relational entity store selected by cfg.Database.Driver.
func New(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	d, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}

	maxOpen, maxIdle := cfg.Database.MaxOpen, cfg.Database.MaxIdle
	// an in-memory sqlite database lives and dies with its single connection
	if cfg.Database.Driver == "sqlite" && strings.Contains(cfg.Database.DSN, ":memory:") {
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}

	return d, nil
}

// Migrate creates or updates the entity tables. Order matters for foreign keys.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.Project{},
		&model.Task{},
		&model.Update{},
	)
}

// RegisterOpenTelemetryPlugin adds span creation to every gorm statement.
func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	return d.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}
