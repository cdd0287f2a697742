package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	echoapi "github.com/ledgerkeep/auth/api/echo"
	"github.com/ledgerkeep/auth/config"
)

// HealthChecker reports whether the code store backend is reachable.
type HealthChecker func() error

// NewHTTPServer creates and configures the echo HTTP server hosting the
// OAuth2 endpoints plus the operational /healthz and /metrics routes.
func NewHTTPServer(
	cfg *config.ServerConfig,
	logger zerolog.Logger,
	oauthAPI *echoapi.OAuth2API,
	registry *prometheus.Registry,
	healthy HealthChecker,
) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(otelecho.Middleware(cfg.OtelServiceName))

	// Request logging with the structured logger.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			event := logger.Info()
			if err != nil {
				event = logger.Error().Err(err)
			}
			event.Ctx(c.Request().Context()).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("ip", c.RealIP()).
				Msg("HTTP request")

			return nil
		}
	})

	oauthAPI.RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		if healthy != nil {
			if err := healthy(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
