package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	docs "github.com/kart-io/sbs-x/api/swagger/sbs"
	"github.com/kart-io/sbs-x/internal/sbs-api/biz"
	"github.com/kart-io/sbs-x/internal/sbs-api/handler"
	"github.com/kart-io/sbs-x/internal/sbs-api/router"
	"github.com/kart-io/sbs-x/internal/sbs-api/store"
	"github.com/kart-io/sbs-x/pkg/component/redis"
	"github.com/kart-io/sbs-x/pkg/infra/app"
	"github.com/kart-io/sbs-x/pkg/infra/server"
	"github.com/kart-io/sbs-x/pkg/infra/tracing"
	"github.com/kart-io/sbs-x/pkg/validator"
)

const (
	appName        = "sbs-api"
	appDescription = `SBS API Server

Read-only REST API over the SBS question corner dataset.

This server provides:
  - Volume listing and retrieval with tag annotations
  - Text, character and tag search returning sparse match lists
  - Optional Redis caching of search results`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithShortDescription("SBS question corner API server"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the SBS API server with the given options.
func Run(opts *Options) error {
	// 1. Logger
	if err := opts.Log.Init(appName, app.GetVersion()); err != nil {
		return err
	}
	logger.Infow("Starting SBS API server...", "store", opts.Store.Backend, "addr", opts.Server.HTTP.Addr)

	// 2. Tracing
	tp, err := tracing.NewProvider(context.Background(), opts.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warnw("Tracing shutdown failed", "error", err.Error())
		}
	}()

	// 3. Store
	ctx, cancel := context.WithTimeout(context.Background(), storeStartupTimeout(opts))
	factory, err := store.GetFactory(ctx, opts.StoreConfig())
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer factory.Close()
	logger.Info("Document store initialized")

	// 4. Search cache
	searchCache, closeCache := newSearchCache(opts)
	defer closeCache()
	if r, ok := factory.(store.Reloader); ok && searchCache != nil {
		r.OnReload(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := searchCache.Clear(ctx); err != nil {
				logger.Warnw("Search cache not cleared after reload", "error", err.Error())
			}
		})
	}

	// 5. Biz
	volumeService := biz.NewVolumeService(factory)
	searchService := biz.NewSearchService(factory, searchCache)

	// 6. Handlers
	sbsHandler := handler.NewSBSHandler(volumeService, searchService)
	healthHandler := handler.NewHealthHandler(volumeService)

	// 7. Server
	validator.Install(validator.Global())
	serverManager := server.NewManager(
		server.WithMode(opts.Server.Mode),
		server.WithHTTPOptions(opts.Server.HTTP),
		server.WithMiddleware(opts.Server.Middleware),
		server.WithShutdownTimeout(opts.Server.ShutdownTimeout),
	)

	if mf, ok := factory.(*store.MemoryFactory); ok && opts.Store.Watch {
		serverManager.Add(store.NewWatcher(mf))
	}

	// 8. Routes
	docs.SwaggerInfosbs.Version = app.GetVersion()
	if err := router.Register(serverManager, sbsHandler, healthHandler); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	logger.Info("SBS API server is ready")
	return serverManager.Run()
}

// storeStartupTimeout leaves room for every MongoDB connect attempt.
func storeStartupTimeout(opts *Options) time.Duration {
	attempts := time.Duration(max(opts.MongoDB.ConnectAttempts, 1))
	return attempts*opts.MongoDB.ConnectTimeout + 5*time.Second
}

// newSearchCache connects to Redis when the cache is enabled. An unreachable
// Redis disables the cache instead of failing startup.
func newSearchCache(opts *Options) (*biz.SearchCache, func()) {
	noop := func() {}
	if !opts.Cache.Enabled {
		return nil, noop
	}

	attempts := time.Duration(max(opts.Cache.Redis.ConnectAttempts, 1))
	ctx, cancel := context.WithTimeout(context.Background(), attempts*(opts.Cache.Redis.DialTimeout+time.Second))
	defer cancel()

	client, err := redis.New(ctx, opts.Cache.Redis)
	if err != nil {
		logger.Warnw("Search cache disabled, Redis unavailable", "addr", opts.Cache.Redis.Addr(), "error", err.Error())
		return nil, noop
	}

	logger.Infow("Search cache enabled", "addr", opts.Cache.Redis.Addr(), "ttl", opts.Cache.TTL)
	cache := biz.NewSearchCache(client.Client, biz.SearchCacheConfig{
		TTL:       opts.Cache.TTL,
		EmptyTTL:  opts.Cache.EmptyTTL,
		KeyPrefix: opts.Cache.KeyPrefix,
	})
	return cache, func() { _ = client.Close() }
}
