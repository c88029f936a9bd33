package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/berlinbruno/podpirate/internal/config"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
}

// NewClient connects to MongoDB and verifies the connection.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Client{
		mongoClient: mongoClient,
		database:    mongoClient.Database(cfg.Database),
	}, nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// Health pings the database
func (c *Client) Health(ctx context.Context) error {
	return c.mongoClient.Ping(ctx, nil)
}

// Accounts returns the account repository.
func (c *Client) Accounts() *AccountRepo {
	return &AccountRepo{collection: c.database.Collection("accounts")}
}

// Podcasts returns the podcast repository.
func (c *Client) Podcasts() *PodcastRepo {
	return &PodcastRepo{collection: c.database.Collection("podcasts")}
}
