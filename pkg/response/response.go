// Package response writes API responses through gin.
//
// Successful responses carry the bare payload. Failures carry
// {"code": <errno>, "message": <public message>} with the errno's HTTP status;
// the underlying cause is logged, never written.
package response

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sbs-x/pkg/errors"
	"github.com/kart-io/sbs-x/pkg/infra/middleware"
)

// ErrorBody is the JSON shape of every failure.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OK writes data with status 200.
func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

// Fail maps err to its Errno and writes the error body. Unknown errors become
// ErrInternal. Server-side failures are logged with their cause.
func Fail(c *gin.Context, err error) {
	e := errors.FromError(err)
	status := e.HTTPStatus()

	if status >= 500 {
		logger.Errorw("Request failed",
			"code", e.Code,
			"path", c.Request.URL.Path,
			"request_id", middleware.GetRequestID(c.Request.Context()),
			"error", err.Error(),
		)
	}

	c.AbortWithStatusJSON(status, Body(e, Lang(c)))
}

// Body renders e in lang.
func Body(e *errors.Errno, lang string) ErrorBody {
	return ErrorBody{Code: e.Code, Message: e.Message(lang)}
}

// Lang picks the response language from Accept-Language. Only "zh" and "en" are served.
func Lang(c *gin.Context) string {
	al := strings.ToLower(c.GetHeader("Accept-Language"))
	if strings.HasPrefix(al, "zh") {
		return "zh"
	}
	return "en"
}
