package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/typeform-survey/survey-client/config"
	"github.com/typeform-survey/survey-client/internal/cache"
	"github.com/typeform-survey/survey-client/internal/catalog"
	"github.com/typeform-survey/survey-client/internal/handlers"
	"github.com/typeform-survey/survey-client/internal/middleware"
	"github.com/typeform-survey/survey-client/internal/services"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/metrics"
	"github.com/typeform-survey/survey-client/pkg/profiling"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func newDashboardRouter(ctx context.Context, cfg *config.Config, results *services.ResultsService) *gin.Engine {
	healthHandler := handlers.NewHealthHandler(results.Loaded)
	dashboardHandler := handlers.NewDashboardHandler(results)

	gin.SetMode(cfg.Dashboard.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := append([]string(nil), cfg.Dashboard.AllowedOrigins...)
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, handlers.StaleHeader},
		MaxAge:        12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(ctx, 50, 100)
	refreshRateLimiter := middleware.NewRateLimiter(ctx, 0.2, 2) // one refresh per 5s, burst of 2

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	dashboard := api.Group("/dashboard", generalRateLimiter.Middleware())
	dashboard.GET("/summary", dashboardHandler.Summary)
	dashboard.GET("/professions", dashboardHandler.Professions)
	dashboard.GET("/distribution", dashboardHandler.Distribution)
	dashboard.GET("/questions", dashboardHandler.Questions)
	dashboard.GET("/responses", dashboardHandler.Responses)
	dashboard.POST("/refresh", refreshRateLimiter.Middleware(), dashboardHandler.Refresh)

	return router
}

func runDashboard(ctx context.Context, cfg *config.Config, source cache.SubmissionSource) error {
	stopProfiler, err := profiling.Start(cfg.Profiling, cfg.Observability, cfg.Logging.AppEnv)
	if err != nil {
		return err
	}
	defer stopProfiler()

	results := services.NewResultsService(cache.NewSubmissionsCache(source, cfg.Dashboard.ResultsTTL), catalog.Default())

	// An initial failure is not fatal; handlers retry on first use
	if err := results.FetchAll(ctx); err != nil {
		logger.Warn("Initial submissions fetch failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Dashboard.Port,
		Handler:           newDashboardRouter(ctx, cfg, results),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard started", zap.String("port", cfg.Dashboard.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Dashboard exited")
	return nil
}
