package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/strrl/sleepq/internal/app"
)

const (
	appKey          = "app"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// SetApp puts the shared application state on every request context.
func SetApp(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(appKey, a)
		c.Next()
	}
}

func AppInstance(c *gin.Context) *app.App {
	v, ok := c.Get(appKey)
	if !ok {
		return nil
	}
	a, _ := v.(*app.App)
	return a
}

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logger logs method, path, status and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey))
	}
}

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg, "request_id": c.GetString(requestIDKey)})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}
