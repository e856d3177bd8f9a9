package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/pkg/logger"
)

// quietPaths are polled by probes and scrapers
var quietPaths = map[string]bool{
	"/api/v1/health": true,
	"/metrics":       true,
}

// RequestLogger writes one line per request with the matched route and the
// caller the request acts for.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if quietPaths[path] {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("actor", audit.IdentityFromContext(c.Request.Context())),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			attrs = append(attrs, slog.String("error", errs))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.Log.Log(c.Request.Context(), level, "HTTP request", attrs...)
	}
}
