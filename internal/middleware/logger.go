package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recordgraph/recordgraph/internal/modules/handler"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"go.uber.org/zap"
)

// ZapLogger logs API requests (/api/*) at info level and everything else at debug.
// Authenticated requests carry the caller's user id.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)

		path := c.Request.URL.Path
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", dur.String(),
			"clientIP", c.ClientIP(),
		}
		if u, ok := c.Get(handler.CtxUser); ok {
			if rec, ok := u.(*model.Record); ok {
				kv = append(kv, "user_id", rec.ID)
			}
		}

		if strings.HasPrefix(path, "/api/") {
			log.Sugar().Infow("HTTP", kv...)
		} else {
			log.Sugar().Debugw("HTTP", kv...)
		}
	}
}
