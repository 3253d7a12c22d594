package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/recordgraph/recordgraph/docs"
	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/middleware"
	"github.com/recordgraph/recordgraph/internal/modules/handler"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/modules/serializer"
	"github.com/recordgraph/recordgraph/internal/modules/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config        *config.Config
	Log           *zap.Logger
	Service       service.RecordService
	RecordHandler *handler.RecordHandler
	AdminHandler  *handler.AdminHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.Metrics())
	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	admin := v1.Group("/admin", middleware.RootAuth(d.Config))
	{
		admin.POST("/users", d.AdminHandler.CreateUser)
		admin.POST("/users/:id/secret-key", d.AdminHandler.IssueSecretKey)
	}

	api := v1.Group("", middleware.UserAuth(d.Config, d.Service))
	{
		api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		me := api.Group("/me")
		{
			me.GET("", d.RecordHandler.GetMe)
			me.GET("/:kind", d.RecordHandler.GetMine)
		}

		for _, k := range model.Kinds {
			g := api.Group("/"+string(k), handler.WithKind(k), middleware.KindSpan(string(k)))
			{
				g.GET("", d.RecordHandler.GetRecords)
				g.GET("/by-external-id/:id", d.RecordHandler.GetRecord)
				g.POST("", d.RecordHandler.CreateRecord)
				g.PATCH("/:id", d.RecordHandler.UpdateRecord)
				g.POST("/export", d.RecordHandler.ExportRecords)
			}

			switch k {
			case model.KindUser:
				g.GET("/all", d.RecordHandler.GetDirectory)
			case model.KindProject:
				g.GET("/by-external-id/:id/updates", d.RecordHandler.GetProjectUpdates)
			}
		}
	}
	return r
}
