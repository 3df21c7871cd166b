// Package server exposes the dashboard core over HTTP with hertz.
package server

import (
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app/server"

	"parceldash/internal/config"
)

// New builds the hertz server with every route registered.
func New(cfg config.ServerConfig, addr string, h *Handler, logger *slog.Logger) *server.Hertz {
	s := server.New(
		server.WithHostPorts(addr),
		server.WithReadTimeout(cfg.ReadTimeout),
		server.WithWriteTimeout(cfg.WriteTimeout),
	)
	Setup(s, h, logger)
	return s
}

// Setup registers middleware and routes.
func Setup(s *server.Hertz, h *Handler, logger *slog.Logger) {
	s.Use(Recovery(logger))
	s.Use(Logger(logger))

	s.GET("/ping", h.Ping)
	s.GET("/health/live", h.Liveness)
	s.GET("/health/ready", h.Readiness)

	v1 := s.Group("/api/v1")
	{
		v1.POST("/sessions", h.CreateSession)
		v1.DELETE("/sessions/:id", h.DeleteSession)

		authorized := v1.Group("")
		authorized.Use(RequireSession(h.sessions))
		{
			authorized.GET("/variant", h.GetVariant)
			authorized.PUT("/variant", h.PutVariant)
			authorized.GET("/records", h.Records)
			authorized.GET("/map", h.Map)
			authorized.GET("/summary", h.Summary)
			authorized.GET("/options", h.Options)
			authorized.GET("/schema", h.Schema)
			authorized.GET("/predicted", h.Predicted)
		}
	}
}
