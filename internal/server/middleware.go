package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FranksOps/scout/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// RecoveryMiddleware turns a handler panic into a 500 JSON error.
func RecoveryMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					"err", fmt.Sprint(r),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"client_ip", c.ClientIP(),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(internalMessage(fmt.Sprint(r))))
			}
		}()
		c.Next()
	}
}

// RequestIDMiddleware accepts a sane inbound X-Request-ID or generates one,
// echoes it, and stores a request-scoped logger in the request context.
func RequestIDMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		ctx := logging.WithContext(c.Request.Context(), log.With("request_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		l := logging.FromContext(c.Request.Context(), log)
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			l.Error("http request with errors", append(attrs, "errors", c.Errors.Errors())...)
			return
		}
		l.Info("http request", attrs...)
	}
}
