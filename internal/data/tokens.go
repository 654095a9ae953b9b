package data

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// RefreshTokensStore manages opaque refresh tokens. Tokens are random
// uuid strings, never JWTs; redeeming one deletes it, so every exchange
// rotates the token.
type RefreshTokensStore struct {
	coll *mongo.Collection
}

// NewRefreshTokensStore returns a RefreshTokensStore over the given
// collection.
func NewRefreshTokensStore(coll *mongo.Collection) *RefreshTokensStore {
	return &RefreshTokensStore{coll: coll}
}

// Issue creates and persists a fresh refresh token for the user.
func (s *RefreshTokensStore) Issue(ctx context.Context, userID bson.ObjectID, ttl time.Duration) (*RefreshToken, error) {
	token := &RefreshToken{
		ID:        bson.NewObjectID(),
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}

	if _, err := s.coll.InsertOne(ctx, token); err != nil {
		return nil, apperr.Store("failed to insert refresh token", err)
	}
	return token, nil
}

// Redeem consumes a refresh token and returns the user it belongs to.
// Unknown, already-used and expired tokens all fail the same way so a
// caller cannot distinguish them.
func (s *RefreshTokensStore) Redeem(ctx context.Context, token string) (bson.ObjectID, error) {
	var stored RefreshToken
	err := s.coll.FindOneAndDelete(ctx, bson.M{"token": token}).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return bson.ObjectID{}, apperr.Unauthorized("invalid refresh token")
		}
		return bson.ObjectID{}, apperr.Store("failed to redeem refresh token", err)
	}

	if time.Now().After(stored.ExpiresAt) {
		return bson.ObjectID{}, apperr.Unauthorized("invalid refresh token")
	}
	return stored.UserID, nil
}

// RevokeAll deletes every refresh token belonging to the user.
func (s *RefreshTokensStore) RevokeAll(ctx context.Context, userID bson.ObjectID) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return apperr.Store("failed to revoke refresh tokens", err)
	}
	return nil
}
