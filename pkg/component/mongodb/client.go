// Package mongodb connects the document store to MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/sbs-x/pkg/component"
	options "github.com/kart-io/sbs-x/pkg/options/mongodb"
)

var _ component.Client = (*Client)(nil)

// disconnectTimeout bounds how long Close waits for in-flight operations.
const disconnectTimeout = 10 * time.Second

var errNotConnected = errors.New("mongodb client is not connected")

// Client is a connected mongo.Client bound to the configured database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects and pings, retrying up to opts.ConnectAttempts times.
func New(ctx context.Context, opts *options.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("mongodb options cannot be nil")
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid mongodb options: %w", utilerrors.NewAggregate(errs))
	}
	co, err := clientOptions(opts)
	if err != nil {
		return nil, err
	}

	var client *mongo.Client
	dial := func(ctx context.Context) error {
		c, err := mongo.Connect(ctx, co)
		if err != nil {
			return fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := c.Ping(ctx, readpref.PrimaryPreferred()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("failed to ping mongodb %s: %w", opts.Addr(), err)
		}
		client = c
		return nil
	}
	if err := component.Connect(ctx, "mongodb", opts.ConnectAttempts, dial); err != nil {
		return nil, err
	}

	logger.Infow("MongoDB connected", "addr", opts.Addr(), "database", opts.Database, "read_preference", opts.ReadPreference)
	return &Client{client: client, db: client.Database(opts.Database)}, nil
}

// clientOptions maps opts onto driver options. Zero values keep the driver defaults.
func clientOptions(opts *options.Options) (*mongoopts.ClientOptions, error) {
	co := mongoopts.Client().ApplyURI(options.BuildURI(opts))

	for _, set := range []struct {
		ok    bool
		apply func()
	}{
		{opts.MaxPoolSize > 0, func() { co.SetMaxPoolSize(opts.MaxPoolSize) }},
		{opts.MinPoolSize > 0, func() { co.SetMinPoolSize(opts.MinPoolSize) }},
		{opts.MaxConnIdleTime > 0, func() { co.SetMaxConnIdleTime(opts.MaxConnIdleTime) }},
		{opts.ConnectTimeout > 0, func() { co.SetConnectTimeout(opts.ConnectTimeout) }},
		{opts.SocketTimeout > 0, func() { co.SetSocketTimeout(opts.SocketTimeout) }},
		{opts.ServerSelectionTimeout > 0, func() { co.SetServerSelectionTimeout(opts.ServerSelectionTimeout) }},
		{opts.Direct, func() { co.SetDirect(true) }},
	} {
		if set.ok {
			set.apply()
		}
	}

	if opts.ReadPreference != "" {
		mode, err := readpref.ModeFromString(opts.ReadPreference)
		if err != nil {
			return nil, fmt.Errorf("invalid mongodb read preference: %w", err)
		}
		rp, err := readpref.New(mode)
		if err != nil {
			return nil, fmt.Errorf("invalid mongodb read preference: %w", err)
		}
		co.SetReadPreference(rp)
	}
	return co, nil
}

func (c *Client) Name() string { return "mongodb" }

func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return errNotConnected
	}
	return c.client.Ping(ctx, readpref.PrimaryPreferred())
}

// Close disconnects, waiting up to disconnectTimeout for in-flight operations.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// Database returns the configured database.
func (c *Client) Database() *mongo.Database { return c.db }

// Collection returns a collection of the configured database.
func (c *Client) Collection(name string) *mongo.Collection { return c.db.Collection(name) }
