// Package db manages MongoDB connections and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps mongo.Client and exposes the collections the stores use.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB, verifies the connection with a ping and
// returns a Client bound to the named database.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// RoomsCollection returns the rooms collection.
func (c *Client) RoomsCollection() *mongo.Collection {
	return c.db.Collection("rooms")
}

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// RefreshTokensCollection returns the refresh_tokens collection.
func (c *Client) RefreshTokensCollection() *mongo.Collection {
	return c.db.Collection("refresh_tokens")
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes every query path relies on. Safe to
// call on every startup; MongoDB treats existing identical indexes as a
// no-op.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// users: email is the login key and must be unique
	usersIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.UsersCollection().Indexes().CreateOne(ctx, usersIndex); err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	// rooms: membership and ownership lookups, plus exact-name filter.
	// A multikey index on "users" serves the findAllByMember containment
	// query.
	roomIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "users", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := c.RoomsCollection().Indexes().CreateMany(ctx, roomIndexes); err != nil {
		return fmt.Errorf("failed to create room indexes: %w", err)
	}

	// messages: room- and author-scoped listings sort ascending by
	// sent_at; date windows filter on edited_at; free-text search needs
	// a text index on the message body.
	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "room", Value: 1}, {Key: "sent_at", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "sent_at", Value: 1}}},
		{Keys: bson.D{{Key: "edited_at", Value: 1}}},
		{Keys: bson.D{{Key: "text", Value: "text"}}},
	}
	if _, err := c.MessagesCollection().Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	// refresh_tokens: token lookup on exchange, TTL-style cleanup is done
	// by expiry check on read, not by a TTL index (tokens are rotated).
	tokenIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := c.RefreshTokensCollection().Indexes().CreateOne(ctx, tokenIndex); err != nil {
		return fmt.Errorf("failed to create refresh token index: %w", err)
	}

	return nil
}
