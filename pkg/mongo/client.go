package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const disconnectTimeout = 5 * time.Second

type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter any, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

type entry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Client stores each collection key as one document keyed by _id.
type Client struct {
	coll collection
	raw  *mongo.Client
	now  func() time.Time
}

// New connects to MongoDB and verifies the primary is reachable.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := raw.Ping(connectCtx, readpref.Primary()); err != nil {
		disconnectCtx, done := context.WithTimeout(context.Background(), disconnectTimeout)
		defer done()
		_ = raw.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"mongo_database":   cfg.Database,
			"mongo_collection": cfg.Collection,
		}), "mongo connection established")
	}

	coll := raw.Database(cfg.Database).Collection(cfg.Collection)
	return &Client{coll: coll, raw: raw, now: time.Now}, nil
}

// NewFromCollection wraps an existing collection handle.
func NewFromCollection(coll collection) *Client {
	return &Client{coll: coll, now: time.Now}
}

// Read returns the stored bytes for key, or nil when no document exists.
func (c *Client) Read(ctx context.Context, key string) ([]byte, error) {
	if c.coll == nil {
		return nil, errors.New("mongo client not initialized")
	}
	var doc entry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Value), nil
}

// Write upserts the document for key.
func (c *Client) Write(ctx context.Context, key string, value []byte) error {
	if c.coll == nil {
		return errors.New("mongo client not initialized")
	}
	doc := entry{Key: key, Value: string(value), UpdatedAt: c.now().UTC()}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

// Ping checks the primary.
func (c *Client) Ping(ctx context.Context) error {
	if c.raw == nil {
		if c.coll == nil {
			return errors.New("mongo client not initialized")
		}
		return nil
	}
	return c.raw.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return c.raw.Disconnect(ctx)
}
