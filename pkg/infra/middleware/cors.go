package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/sbs-x/pkg/options/middleware"
)

// CORS answers preflight requests with 204 and decorates responses to allowed origins.
func CORS(opts mwopts.CORSOptions) gin.HandlerFunc {
	preflight := http.Header{}
	preflight.Set("Access-Control-Allow-Methods", strings.Join(mwopts.CORSMethods, ", "))
	preflight.Set("Access-Control-Allow-Headers", strings.Join(opts.AllowHeaders, ", "))
	preflight.Set("Access-Control-Max-Age", strconv.Itoa(int(opts.MaxAge.Seconds())))
	expose := strings.Join(opts.ExposeHeaders, ", ")

	return func(c *gin.Context) {
		allow := opts.Origin(c.GetHeader("Origin"))
		if allow == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allow)
		if allow != "*" {
			h.Add("Vary", "Origin")
		}
		if opts.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if expose != "" {
			h.Set("Access-Control-Expose-Headers", expose)
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		for k, v := range preflight {
			h[k] = v
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
