package server

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"parceldash/internal/session"
)

const (
	RequestIDHeader = "X-Request-ID"
	SessionHeader   = "X-Session-ID"

	sessionKey = "session"
)

// Recovery turns a panic into a 500 and logs the stack.
func Recovery(logger *slog.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					"request_id", requestID(c),
					"method", string(c.Method()),
					"path", string(c.Path()),
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(consts.StatusInternalServerError, Response{
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
				})
			}
		}()
		c.Next(ctx)
	}
}

// Logger assigns a request id and logs each request on completion. Health
// probes are not logged.
func Logger(logger *slog.Logger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		id := string(c.Request.Header.Peek(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Response.Header.Set(RequestIDHeader, id)

		c.Next(ctx)

		if path == "/health/live" || path == "/health/ready" {
			return
		}
		latency := time.Since(start)
		status := c.Response.StatusCode()
		l := logger.With(
			"request_id", id,
			"method", string(c.Method()),
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
		)
		switch {
		case status >= 500:
			l.Error("request completed with server error")
		case status >= 400:
			l.Warn("request completed with client error")
		default:
			l.Info("request completed")
		}
	}
}

func requestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDHeader))
}

// RequireSession is the session gate: requests must name an open session in
// the X-Session-ID header.
func RequireSession(m *session.Manager) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.Request.Header.Peek(SessionHeader))
		if id == "" {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, Response{
				Code:    "SESSION_REQUIRED",
				Message: "create a session and send its id in the " + SessionHeader + " header",
			})
			return
		}
		s, ok := m.Get(id)
		if !ok {
			c.AbortWithStatusJSON(consts.StatusNotFound, Response{
				Code:    "SESSION_NOT_FOUND",
				Message: "session does not exist or was closed",
			})
			return
		}
		c.Set(sessionKey, s)
		c.Next(ctx)
	}
}

func currentSession(c *app.RequestContext) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
