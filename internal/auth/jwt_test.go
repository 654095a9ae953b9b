package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestHashAndCheckPassword(t *testing.T) {
	pwd := "s3cr3t-password"
	hash, err := HashPassword(pwd)
	require.NoError(t, err)

	require.NoError(t, CheckPassword(hash, pwd))
	require.Error(t, CheckPassword(hash, "wrong"))
}

func TestJWTManager_GenerateAndVerify(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("test-secret", 5*time.Minute)

	id := bson.NewObjectID()
	token, expiresAt, err := m.GenerateToken(id, "test@example.com", "user")
	req.NoError(err)
	req.True(expiresAt.After(time.Now()))

	claims, err := m.VerifyToken(token)
	req.NoError(err)
	req.Equal(id.Hex(), claims.UserID)
	req.Equal("test@example.com", claims.Email)
	req.Equal("user", claims.Role)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", 5*time.Minute)
	other := NewJWTManager("secret-b", 5*time.Minute)

	token, _, err := m.GenerateToken(bson.NewObjectID(), "test@example.com", "user")
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	require.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret", -1*time.Minute)

	token, _, err := m.GenerateToken(bson.NewObjectID(), "test@example.com", "user")
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	require.Error(t, err)
}
