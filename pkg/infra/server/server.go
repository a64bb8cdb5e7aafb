// Package server runs the HTTP transport and companion components under one lifecycle.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/sbs-x/pkg/infra/server/transport/http"
	options "github.com/kart-io/sbs-x/pkg/options/server"
)

type (
	Options = options.Options
	Option  = options.Option
)

var (
	WithMode            = options.WithMode
	WithHTTPOptions     = options.WithHTTPOptions
	WithMiddleware      = options.WithMiddleware
	WithShutdownTimeout = options.WithShutdownTimeout
)

// Component is anything started with the HTTP server and stopped with it.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Manager starts the HTTP server first and its companions after it, and
// stops them in reverse.
type Manager struct {
	opts *options.Options
	http *http.Server

	mu         sync.Mutex
	components []Component
	running    []Component
}

func NewManager(opts ...options.Option) *Manager {
	o := options.NewOptions()
	o.ApplyOptions(opts...)
	_ = o.Complete()
	gin.SetMode(o.Mode)

	srv := http.NewServer(o.HTTP, o.Middleware)
	return &Manager{
		opts:       o,
		http:       srv,
		components: []Component{srv},
	}
}

func (m *Manager) HTTPServer() *http.Server { return m.http }

// Engine returns the gin engine routes are registered on.
func (m *Manager) Engine() *gin.Engine { return m.http.Engine() }

// Add registers c to start after the components already added.
func (m *Manager) Add(c Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Start starts every component in order. When one fails the ones already
// running are stopped and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running != nil {
		return fmt.Errorf("server manager already started")
	}

	running := make([]Component, 0, len(m.components))
	for _, c := range m.components {
		if err := c.Start(ctx); err != nil {
			stopAll(ctx, running)
			return fmt.Errorf("failed to start %s: %w", c.Name(), err)
		}
		logger.Infow("Component started", "name", c.Name())
		running = append(running, c)
	}
	m.running = running
	logger.Infow("HTTP server listening", "addr", m.http.Addr().String())
	return nil
}

// Stop stops the running components in reverse start order.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	running := m.running
	m.running = nil
	m.mu.Unlock()

	return stopAll(ctx, running)
}

func stopAll(ctx context.Context, running []Component) error {
	var errs []error
	for _, c := range slices.Backward(running) {
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", c.Name(), err))
			continue
		}
		logger.Infow("Component stopped", "name", c.Name())
	}
	return utilerrors.NewAggregate(errs)
}

// Run blocks until SIGINT or SIGTERM.
func (m *Manager) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done or the HTTP
// server stops serving, then shuts down within the configured timeout.
func (m *Manager) RunContext(ctx context.Context) error {
	if err := m.Start(context.Background()); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Server shutting down...")
	case serveErr = <-m.http.Failed():
		logger.Errorw("HTTP server failed, shutting down", "error", serveErr.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.opts.ShutdownTimeout)
	defer cancel()
	return utilerrors.NewAggregate([]error{serveErr, m.Stop(shutdownCtx)})
}
