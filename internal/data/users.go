package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/alex20020702/internship-nest-chat/internal/normalize"
	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// UsersStore performs user DB operations.
type UsersStore struct {
	coll *mongo.Collection
}

// NewUsersStore returns a UsersStore using the provided collection.
func NewUsersStore(coll *mongo.Collection) *UsersStore {
	return &UsersStore{coll: coll}
}

// CreateUser inserts a new user document with an already-hashed password.
func (u *UsersStore) CreateUser(ctx context.Context, email, name, hashedPassword string, role Role) (*User, error) {
	email = normalize.Email(email)
	if email == "" {
		return nil, apperr.InvalidArg("email is required")
	}
	if hashedPassword == "" {
		return nil, apperr.InvalidArg("password is required")
	}
	if role == "" {
		role = RoleUser
	}

	user := &User{
		Email:     email,
		Name:      normalize.Name(name),
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		// Unique index on email turns duplicate registration into a
		// duplicate key error.
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.AlreadyExists("user already exists")
		}
		return nil, apperr.Store("failed to insert user", err)
	}

	user.ID = result.InsertedID.(bson.ObjectID)
	return user, nil
}

// GetUserByEmail finds a user by normalized email.
func (u *UsersStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Store("failed to find user by email", err)
	}
	return &user, nil
}

// GetUserByID finds a user by ObjectID.
func (u *UsersStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var user User
	err := u.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Store("failed to find user by id", err)
	}
	return &user, nil
}

// GetUsersByIDs batch-loads users and returns them keyed by id, in the
// public (password-free) shape. Ids that match no document are simply
// absent from the map; the reference resolver decides what to do with
// dangling references.
func (u *UsersStore) GetUsersByIDs(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*PublicUser, error) {
	users := make(map[bson.ObjectID]*PublicUser, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := u.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Store("failed to find users by ids", err)
	}
	defer cursor.Close(ctx)

	var docs []*User
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Store("failed to decode users", err)
	}

	for _, doc := range docs {
		users[doc.ID] = doc.Public()
	}
	return users, nil
}

// UserExists checks if a user exists by email.
func (u *UsersStore) UserExists(ctx context.Context, email string) (bool, error) {
	count, err := u.coll.CountDocuments(ctx, bson.M{"email": normalize.Email(email)})
	if err != nil {
		return false, apperr.Store("failed to count users", err)
	}
	return count > 0, nil
}
