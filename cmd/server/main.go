package main

//	@title			Record Graph API
//	@version		1.0
//	@description	Record graph translation layer over a relational or Airtable store.
//	@schemes		http https
//	@BasePath		/api/v1

//  Bearer at User level
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				User Bearer token (e.g., "Bearer sk-user-xxxx")

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recordgraph/recordgraph/internal/bootstrap"
	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/infra/cache"
	dbpkg "github.com/recordgraph/recordgraph/internal/infra/db"
	"github.com/recordgraph/recordgraph/internal/infra/queue"
	"github.com/recordgraph/recordgraph/internal/modules/handler"
	"github.com/recordgraph/recordgraph/internal/modules/service"
	"github.com/recordgraph/recordgraph/internal/router"
	"github.com/recordgraph/recordgraph/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	relational := cfg.Backend.Kind != bootstrap.BackendAirtable

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()

		// the store plugins must be registered after the tracer provider is set
		if relational {
			if err := dbpkg.RegisterOpenTelemetryPlugin(do.MustInvoke[*gorm.DB](inj)); err != nil {
				log.Sugar().Warnw("failed to register GORM OpenTelemetry plugin, continuing without database tracing", "err", err)
			}
			if err := cache.RegisterOpenTelemetryPlugin(do.MustInvoke[*redis.Client](inj)); err != nil {
				log.Sugar().Warnw("failed to register Redis OpenTelemetry plugin, continuing without Redis tracing", "err", err)
			}
		}
	}

	svc, err := do.Invoke[service.RecordService](inj)
	if err != nil {
		log.Sugar().Fatalw("failed to build record service", "backend", cfg.Backend.Kind, "err", err)
	}
	if p := do.MustInvoke[*queue.Publisher](inj); p != nil {
		defer func() { _ = p.Close() }()
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	engine := router.NewRouter(router.RouterDeps{
		Config:        cfg,
		Log:           log,
		Service:       svc,
		RecordHandler: do.MustInvoke[*handler.RecordHandler](inj),
		AdminHandler:  do.MustInvoke[*handler.AdminHandler](inj),
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr, "backend", cfg.Backend.Kind)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	log.Sugar().Info("server exited")
}
