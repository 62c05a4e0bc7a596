// Package server serves the sleep quality dashboard and its JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/strrl/sleepq/internal/app"
)

//go:embed templates/*.html
var templatesFS embed.FS

const shutdownTimeout = 10 * time.Second

// New returns a gin engine with middleware and routes installed.
func New(a *app.App) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	Initialize(r, a)
	return r
}

func Initialize(r *gin.Engine, a *app.App) {
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(otelgin.Middleware("sleepq"))
	r.Use(SetApp(a))

	r.GET("/", Dashboard)
	r.POST("/predict", PredictForm)
	r.GET("/health", Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/predict", PredictAPI)
		api.GET("/trend", Trend)
		api.GET("/model", ModelInfo)
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, a *app.App) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
