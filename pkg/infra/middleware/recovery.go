package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/pkg/errors"
	mwopts "github.com/kart-io/sbs-x/pkg/options/middleware"
)

// Recovery turns a handler panic into an ErrPanic response. The panic value and
// stack go to the log only.
func Recovery(opts mwopts.RecoveryOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			fields := []interface{}{
				"panic", r,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", GetRequestID(c.Request.Context()),
			}
			if opts.EnableStackTrace {
				fields = append(fields, "stack_trace", string(debug.Stack()))
			}
			logger.Errorw("panic recovered", fields...)

			c.AbortWithStatusJSON(errors.ErrPanic.HTTPStatus(), gin.H{
				"code":    errors.ErrPanic.Code,
				"message": errors.ErrPanic.MessageEN,
			})
		}()
		c.Next()
	}
}
