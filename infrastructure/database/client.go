package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Anmirazik/ev-server/config"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
)

// slowQueryThreshold is how long a query may run before it is logged
// as slow
const slowQueryThreshold = time.Second

// Client wraps the MongoDB connection used by the service
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *logging.Logger
}

// NewClient connects to MongoDB and verifies the connection
func NewClient(ctx context.Context, cfg config.MongoDBConfig, logger *logging.Logger) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, common.WrapError(err, common.ErrCodeDatabaseConnection, "failed to connect to MongoDB")
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, cfg.ServerSelectionTimeout)
	defer cancelPing()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, common.WrapError(err, common.ErrCodeDatabaseConnection, "failed to ping MongoDB")
	}

	logger.Info("Connected to MongoDB", logging.String("database", cfg.Database))

	return &Client{
		client:   client,
		database: client.Database(cfg.Database),
		logger:   logger,
	}, nil
}

// Database returns the service database handle
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Ping verifies the connection is still alive
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseConnection, "MongoDB ping failed")
	}
	return nil
}

// Disconnect closes the connection
func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return common.WrapError(err, common.ErrCodeDatabaseConnection, "failed to disconnect from MongoDB")
	}
	c.logger.Info("Disconnected from MongoDB")
	return nil
}

// observeQuery records query metrics and logs the query when it ran
// longer than slowQueryThreshold. Repositories defer it around every
// collection call.
func observeQuery(logger *logging.Logger, collector *metrics.Collector, operation, collection string, start time.Time) {
	elapsed := time.Since(start)
	collector.RecordDatabaseQuery("mongodb", operation, collection, elapsed)

	if elapsed > slowQueryThreshold {
		logger.LogSlowQuery(operation, elapsed,
			logging.String("database", "mongodb"),
			logging.String("collection", collection),
		)
	}
}
