package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/recordgraph/recordgraph/internal/modules/handler"
	"github.com/recordgraph/recordgraph/internal/modules/serializer"
	"github.com/recordgraph/recordgraph/internal/modules/service"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/recordgraph/recordgraph/internal/pkg/utils/tokens"
)

func bearer(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

// UserAuth authenticates requests with a user bearer token and stores the
// caller's record in the context under handler.CtxUser.
// It also sets the user_id attribute on the current span.
func UserAuth(cfg *config.Config, svc service.RecordService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		secret, ok := tokens.ParseToken(raw, cfg.Root.UserBearerTokenPrefix)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		user, err := svc.Authenticate(c.Request.Context(), secret)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			status, res := serializer.RecordErr(err)
			if status == http.StatusServiceUnavailable {
				c.Header("Retry-After", "1")
			}
			c.AbortWithStatusJSON(status, res)
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", user.ID))
		}

		c.Set(handler.CtxUser, user)
		c.Next()
	}
}

// RootAuth guards the admin routes with the root api bearer token.
func RootAuth(cfg *config.Config) gin.HandlerFunc {
	want := []byte(cfg.Root.ApiBearerToken)
	return func(c *gin.Context) {
		raw, ok := bearer(c)
		if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(raw), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		c.Next()
	}
}
