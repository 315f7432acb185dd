package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/logger"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrClosed is returned by a Connector after Close.
var ErrClosed = errors.New("mongo connector closed")

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration, opts ...*options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, opts...)
	client, err := mongo.Connect(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Connector owns a lazily established Mongo client shared by every store.
// Connect is idempotent: the first successful call caches the client and later
// calls return it. A failed attempt leaves the connector unconnected so the
// next operation retries.
type Connector struct {
	uri      string
	database string
	timeout  time.Duration
	debug    bool

	mu     sync.Mutex
	client *mongo.Client
	closed bool
}

// NewConnector creates a connector. No network activity happens until Connect.
func NewConnector(uri, database string, timeout time.Duration) *Connector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Connector{uri: uri, database: database, timeout: timeout}
}

// WithDebug enables command monitoring at debug level (development only).
func (c *Connector) WithDebug(on bool) *Connector {
	c.debug = on
	return c
}

// Connect establishes the client if needed and returns it.
func (c *Connector) Connect(ctx context.Context) (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.client != nil {
		return c.client, nil
	}
	var opts []*options.ClientOptions
	if c.debug {
		opts = append(opts, options.Client().SetMonitor(commandMonitor()))
	}
	client, err := ConnectMongo(ctx, c.uri, c.timeout, opts...)
	if err != nil {
		return nil, err
	}
	logger.Infof("connected to MongoDB database %q", c.database)
	c.client = client
	return client, nil
}

// Database connects if needed and returns the configured database handle.
func (c *Connector) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.database), nil
}

// Ping checks connectivity; it connects first when not yet connected.
func (c *Connector) Ping(ctx context.Context) error {
	client, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client. Safe to call more than once.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}

func commandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, e *event.CommandStartedEvent) {
			logger.Debugf("mongo %s %s: %s", e.DatabaseName, e.CommandName, e.Command.String())
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			logger.Debugf("mongo %s failed after %s: %s", e.CommandName, e.Duration, e.Failure)
		},
	}
}
