// Package http provides the HTTP server for roundtable.
package http

import (
	"context"
	"net/http"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/roundtable/internal/service"
	v1 "github.com/xiaot623/gogo/roundtable/internal/transport/http/v1"
	"github.com/xiaot623/gogo/roundtable/internal/transport/ws"
)

// NewServer creates and configures the HTTP server: the chat API plus the
// WebSocket watch endpoint.
func NewServer(svc *service.Service, watch *ws.Server, logger slog.Logger, corsOrigin string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []slog.Field{
				slog.F("method", v.Method),
				slog.F("uri", v.URI),
				slog.F("status", v.Status),
				slog.F("latency_ms", v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				logger.Warn(context.Background(), "request failed", append(fields, slog.Error(v.Error))...)
				return nil
			}
			logger.Info(context.Background(), "request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	}))

	// Handlers
	v1.NewHandler(svc).RegisterRoutes(e)
	watch.RegisterRoutes(e)

	return e
}
