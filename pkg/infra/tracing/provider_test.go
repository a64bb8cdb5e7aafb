package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	options "github.com/kart-io/sbs-x/pkg/options/tracing"
)

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderInvalid(t *testing.T) {
	opts := options.NewOptions()
	opts.Enabled = true
	opts.ExporterType = "zipkin"
	opts.SamplerType = options.SamplerRatio
	opts.SamplerRatio = 2

	_, err := NewProvider(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
	assert.Contains(t, err.Error(), "sampler ratio")
}

// The enabled provider installs otel globals, so everything that needs
// real span contexts runs in this one test.
func TestEnabledProvider(t *testing.T) {
	opts := options.NewOptions()
	opts.Enabled = true
	opts.ExporterType = options.ExporterNoop
	opts.SamplerType = options.SamplerAlwaysOn

	p, err := NewProvider(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	assert.True(t, p.Enabled())

	t.Run("start", func(t *testing.T) {
		ctx, end := Start(context.Background(), "test", "op", attribute.String("k", "v"))
		assert.NotEmpty(t, TraceID(ctx))
		Annotate(ctx, attribute.Int("n", 1))
		err := errors.New("boom")
		end(&err)
	})

	t.Run("middleware continues caller trace", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(Middleware())
		var seen string
		r.GET("/volumes/:volume", func(c *gin.Context) {
			seen = TraceID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
		req := httptest.NewRequest(http.MethodGet, "/volumes/3", nil)
		req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
		r.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, traceID, seen)
	})
}

func TestHelpersWithoutProvider(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	_, end := Start(context.Background(), "test", "op")
	end(nil)
	var err error
	end(&err)
}
