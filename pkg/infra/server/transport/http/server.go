// Package http provides the gin HTTP transport.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	apierrors "github.com/kart-io/sbs-x/pkg/errors"
	"github.com/kart-io/sbs-x/pkg/infra/middleware"
	"github.com/kart-io/sbs-x/pkg/infra/tracing"
	mwopts "github.com/kart-io/sbs-x/pkg/options/middleware"
	options "github.com/kart-io/sbs-x/pkg/options/server/http"
)

// Server is the HTTP server implementation.
type Server struct {
	opts   *options.Options
	engine *gin.Engine

	mu     sync.Mutex
	server *http.Server
	addr   net.Addr
	failed chan error
}

// NewServer creates a gin engine with the configured middleware chain and a JSON 404.
func NewServer(serverOpts *options.Options, middlewareOpts *mwopts.Options) *Server {
	if serverOpts == nil {
		serverOpts = options.NewOptions()
	}
	if middlewareOpts == nil {
		middlewareOpts = mwopts.NewOptions()
	}

	engine := gin.New()
	// Path parameters may carry escaped slashes (search terms).
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	// Middleware must be installed before routes so groups inherit it.
	applyMiddleware(engine, middlewareOpts)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    apierrors.ErrRouteNotFound.Code,
			"message": apierrors.ErrRouteNotFound.MessageEN,
		})
	})

	return &Server{
		opts:   serverOpts,
		engine: engine,
		failed: make(chan error, 1),
	}
}

func applyMiddleware(engine *gin.Engine, opts *mwopts.Options) {
	_ = opts.Complete()

	engine.Use(middleware.Recovery(*opts.Recovery))
	engine.Use(middleware.RequestID(*opts.RequestID))
	engine.Use(tracing.Middleware())
	engine.Use(middleware.Logger(*opts.Logger))
	if !opts.DisableCORS {
		engine.Use(middleware.CORS(*opts.CORS))
	}
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http[gin]"
}

// Engine returns the underlying gin.Engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the bound listener address once started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the listener and serves in the background. Bind errors are returned directly.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       s.opts.IdleTimeout,
		MaxHeaderBytes:    s.opts.MaxHeaderBytes,
	}

	s.mu.Lock()
	s.server = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server exited", "addr", s.opts.Addr, "error", err.Error())
			s.failed <- err
		}
	}()

	return ctx.Err()
}

// Failed delivers the error that ended serving. It never fires after a
// graceful Stop.
func (s *Server) Failed() <-chan error {
	return s.failed
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
