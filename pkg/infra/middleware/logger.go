package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/pkg/infra/tracing"
	mwopts "github.com/kart-io/sbs-x/pkg/options/middleware"
)

// Logger writes one access log line per request. Failed and slow requests are
// logged at warn level, the rest at info.
func Logger(opts mwopts.LoggerOptions) gin.HandlerFunc {
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"latency_ms", elapsed.Milliseconds(),
		}
		if rid := GetRequestID(c.Request.Context()); rid != "" {
			fields = append(fields, "request_id", rid)
		}
		if tid := tracing.TraceID(c.Request.Context()); tid != "" {
			fields = append(fields, "trace_id", tid)
		}
		if opts.ClientIDHeader != "" {
			if cid := c.GetHeader(opts.ClientIDHeader); cid != "" {
				fields = append(fields, "client_id", cid)
			}
		}

		switch {
		case status >= 500:
			logger.Warnw("Request failed", fields...)
		case opts.SlowThreshold > 0 && elapsed >= opts.SlowThreshold:
			logger.Warnw("Slow request", fields...)
		default:
			logger.Infow("Request served", fields...)
		}
	}
}
