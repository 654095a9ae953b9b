package data

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/internal/db"
	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// setupDB connects to the test database and drops every collection so
// each test starts clean. Skips when MONGODB_URI is not set.
func setupDB(t *testing.T) *db.Client {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "chat_test_db")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	_ = c.UsersCollection().Drop(ctx)
	_ = c.RoomsCollection().Drop(ctx)
	_ = c.MessagesCollection().Drop(ctx)
	_ = c.RefreshTokensCollection().Drop(ctx)

	// text search and the unique email constraint need the indexes
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

// mustCreateUser inserts a user or fails the test.
func mustCreateUser(t *testing.T, users *UsersStore, email, name string) *User {
	t.Helper()
	user, err := users.CreateUser(context.Background(), email, name, "hashed-password", RoleUser)
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func TestUsersCreateAndGet(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	user := mustCreateUser(t, users, "Alice@Example.com ", "Alice")
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized on create: %s", user.Email)
	}

	ok, err := users.UserExists(ctx, "alice@example.com")
	if err != nil || !ok {
		t.Fatalf("UserExists failed: ok=%v err=%v", ok, err)
	}

	u2, err := users.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if u2.ID != user.ID {
		t.Fatalf("GetUserByEmail returned wrong user: %s", u2.ID.Hex())
	}

	got, err := users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("GetUserByID returned wrong email: %s", got.Email)
	}
}

func TestUsersDuplicateEmail(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())

	mustCreateUser(t, users, "bob@example.com", "Bob")
	_, err := users.CreateUser(context.Background(), "bob@example.com", "Bob Again", "hash", RoleUser)
	if !apperr.IsCode(err, apperr.CodeAlreadyExists) {
		t.Fatalf("expected already-exists, got %v", err)
	}
}

func TestUsersNotFound(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())

	_, err := users.GetUserByID(context.Background(), bson.NewObjectID())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestUsersGetByIDsSkipsMissing(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	alice := mustCreateUser(t, users, "alice@example.com", "Alice")
	missing := bson.NewObjectID()

	got, err := users.GetUsersByIDs(ctx, []bson.ObjectID{alice.ID, missing})
	if err != nil {
		t.Fatalf("GetUsersByIDs failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 user, got %d", len(got))
	}
	if got[alice.ID] == nil || got[alice.ID].Email != "alice@example.com" {
		t.Fatalf("wrong resolved user: %+v", got[alice.ID])
	}
}

func TestParseID(t *testing.T) {
	// unit test, no DB required
	id := bson.NewObjectID()
	parsed, err := ParseID(id.Hex())
	if err != nil {
		t.Fatalf("ParseID round trip failed: %v", err)
	}
	if parsed != id {
		t.Fatalf("ParseID round trip mismatch")
	}

	_, err = ParseID("not-a-hex-id")
	if !apperr.IsCode(err, apperr.CodeInvalidArgument) {
		t.Fatalf("expected invalid-argument, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
}
