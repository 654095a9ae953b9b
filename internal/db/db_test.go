package db

import (
	"context"
	"os"
	"testing"
)

func TestConnectAndCreateIndexes(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := New(ctx, uri, "chat_test_db")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = c.Close(context.Background()) }()

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	// a second run must be a no-op, not a conflict
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes not idempotent: %v", err)
	}
}
