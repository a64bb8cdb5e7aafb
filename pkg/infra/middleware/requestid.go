// Package middleware provides the gin middleware installed by the API server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/sbs-x/pkg/id"
	mwopts "github.com/kart-io/sbs-x/pkg/options/middleware"
)

// HeaderXRequestID is the default request id header.
const HeaderXRequestID = "X-Request-ID"

type requestIDKey struct{}

// GetRequestID returns the request id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

// WithRequestID returns a copy of ctx carrying rid.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID tags every request with an id, echoed in the response header.
func RequestID(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = HeaderXRequestID
	}
	mint := id.NewULID
	if opts.Generator == mwopts.GeneratorUUID {
		mint = id.NewUUID
	}

	return func(c *gin.Context) {
		rid := c.GetHeader(header)
		if !opts.Reuse(rid) {
			rid = mint()
		}
		c.Header(header, rid)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
