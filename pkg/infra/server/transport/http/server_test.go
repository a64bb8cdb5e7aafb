package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/kart-io/sbs-x/pkg/errors"
	"github.com/kart-io/sbs-x/pkg/infra/middleware"
	options "github.com/kart-io/sbs-x/pkg/options/server/http"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNoRouteJSON(t *testing.T) {
	s := NewServer(nil, nil)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprint(apierrors.ErrRouteNotFound.Code))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
}

func TestStartStop(t *testing.T) {
	s := NewServer(options.NewOptions(), nil)
	s.opts.Addr = "127.0.0.1:0"
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	resp, err := http.Get("http://" + s.Addr().String() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))

	require.NoError(t, s.Stop(context.Background()))
}

func TestStartBindError(t *testing.T) {
	first := NewServer(options.NewOptions(), nil)
	first.opts.Addr = "127.0.0.1:0"
	require.NoError(t, first.Start(context.Background()))
	defer first.Stop(context.Background())

	second := NewServer(options.NewOptions(), nil)
	second.opts.Addr = first.Addr().String()
	assert.Error(t, second.Start(context.Background()))
}
