package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/infra/blob"
	"github.com/recordgraph/recordgraph/internal/infra/cache"
	"github.com/recordgraph/recordgraph/internal/infra/db"
	"github.com/recordgraph/recordgraph/internal/infra/httpclient"
	"github.com/recordgraph/recordgraph/internal/infra/logger"
	"github.com/recordgraph/recordgraph/internal/infra/queue"
	"github.com/recordgraph/recordgraph/internal/modules/handler"
	"github.com/recordgraph/recordgraph/internal/modules/repo"
	"github.com/recordgraph/recordgraph/internal/modules/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	BackendRelational = "relational"
	BackendAirtable   = "airtable"
)

// BuildContainer wires the service graph. Redis, RabbitMQ and S3 are optional:
// their providers yield nil when unconfigured and dependents run without them.
func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		return cache.New(do.MustInvoke[*config.Config](i)), nil
	})

	// RabbitMQ
	do.Provide(inj, func(i *do.Injector) (*queue.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		return queue.NewPublisher(conn, cfg.RabbitMQ.Exchange, do.MustInvoke[*zap.Logger](i))
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.S3.Bucket == "" {
			return nil, nil
		}
		return blob.NewS3(context.Background(), cfg)
	})

	// Airtable
	do.Provide(inj, func(i *do.Injector) (*httpclient.AirtableClient, error) {
		return httpclient.NewAirtableClient(do.MustInvoke[*config.Config](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.IdentifierBridge, error) {
		cfg := do.MustInvoke[*config.Config](i)
		base := repo.NewIdentifierBridge(do.MustInvoke[*gorm.DB](i))
		ttl := time.Duration(cfg.Redis.BridgeTTLSec) * time.Second
		return repo.NewCachedBridge(base, do.MustInvoke[*redis.Client](i), ttl, do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.EntityRepo, error) {
		return repo.NewEntityRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*zap.Logger](i)), nil
	})

	// Backend
	do.Provide(inj, func(i *do.Injector) (service.Backend, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		switch cfg.Backend.Kind {
		case "", BackendRelational:
			return service.NewRelationalBackend(
				do.MustInvoke[repo.IdentifierBridge](i),
				do.MustInvoke[repo.EntityRepo](i),
				cfg.Gateway.Concurrency,
				log,
			), nil
		case BackendAirtable:
			if cfg.Airtable.BaseID == "" || cfg.Airtable.Token == "" {
				return nil, fmt.Errorf("airtable backend needs airtable.baseID and airtable.token")
			}
			return service.NewAirtableBackend(do.MustInvoke[*httpclient.AirtableClient](i), log), nil
		default:
			return nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
		}
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.RecordService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		opts := service.RecordServiceOptions{
			ExportPrefix:  cfg.S3.ExportPrefix,
			PresignExpire: time.Duration(cfg.S3.PresignExpireSec) * time.Second,
			SecretPepper:  cfg.Root.SecretPepper,
			TokenPrefix:   cfg.Root.UserBearerTokenPrefix,
		}
		// assign only non-nil pointers so the interfaces stay nil when unconfigured
		if p := do.MustInvoke[*queue.Publisher](i); p != nil {
			opts.Events = p
		}
		if s3 := do.MustInvoke[*blob.S3Deps](i); s3 != nil {
			opts.Exports = s3
		}
		return service.NewRecordService(do.MustInvoke[service.Backend](i), opts, do.MustInvoke[*zap.Logger](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.RecordHandler, error) {
		return handler.NewRecordHandler(do.MustInvoke[service.RecordService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AdminHandler, error) {
		return handler.NewAdminHandler(do.MustInvoke[service.RecordService](i)), nil
	})

	return inj
}
