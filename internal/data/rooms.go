package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/alex20020702/internship-nest-chat/internal/normalize"
	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// RoomsStore provides room database operations. Reads that resolve the
// owner and membership references need the users store alongside the
// rooms collection.
type RoomsStore struct {
	coll  *mongo.Collection
	users *UsersStore
}

// NewRoomsStore returns a RoomsStore over the given collection.
func NewRoomsStore(coll *mongo.Collection, users *UsersStore) *RoomsStore {
	return &RoomsStore{coll: coll, users: users}
}

// NewRoom carries the fields needed to create a room.
type NewRoom struct {
	Name  string
	Owner bson.ObjectID
	Users []bson.ObjectID
}

// RoomPatch is a partial update; nil fields are left untouched on the
// stored document (merge semantics, not replace).
type RoomPatch struct {
	Name  *string
	Owner *bson.ObjectID
	Users []bson.ObjectID
}

// FindAll returns every room with bare owner/member ids (no resolution).
func (r *RoomsStore) FindAll(ctx context.Context) ([]*Room, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Store("failed to list rooms", err)
	}
	defer cursor.Close(ctx)

	var rooms []*Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, apperr.Store("failed to decode rooms", err)
	}
	return rooms, nil
}

// FindAllByMember returns the rooms whose membership list contains the
// given user, with owner and members resolved.
func (r *RoomsStore) FindAllByMember(ctx context.Context, userID bson.ObjectID) ([]*RoomView, error) {
	// Equality against an array field is a containment match in MongoDB.
	return r.findResolved(ctx, bson.M{"users": userID})
}

// FindAllByOwner returns the rooms owned by the given user, with owner
// and members resolved.
func (r *RoomsStore) FindAllByOwner(ctx context.Context, userID bson.ObjectID) ([]*RoomView, error) {
	return r.findResolved(ctx, bson.M{"owner": userID})
}

// FindByID returns a single room with owner and members resolved.
func (r *RoomsStore) FindByID(ctx context.Context, id bson.ObjectID) (*RoomView, error) {
	var room Room
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("room not found")
		}
		return nil, apperr.Store("failed to find room", err)
	}

	views, err := r.resolveRooms(ctx, []*Room{&room})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// FindByName returns every room whose name matches exactly. Names are
// not unique, so the result is a list.
func (r *RoomsStore) FindByName(ctx context.Context, name string) ([]*RoomView, error) {
	return r.findResolved(ctx, bson.M{"name": name})
}

// findResolved runs a filter and resolves owner/member references on
// every hit.
func (r *RoomsStore) findResolved(ctx context.Context, filter bson.M) ([]*RoomView, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Store("failed to list rooms", err)
	}
	defer cursor.Close(ctx)

	var rooms []*Room
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, apperr.Store("failed to decode rooms", err)
	}
	return r.resolveRooms(ctx, rooms)
}

// AddOne assigns a fresh identifier, persists the room and returns the
// stored document.
func (r *RoomsStore) AddOne(ctx context.Context, newRoom NewRoom) (*Room, error) {
	name := normalize.Name(newRoom.Name)
	if name == "" {
		return nil, apperr.InvalidArg("room name is required")
	}
	if newRoom.Owner.IsZero() {
		return nil, apperr.InvalidArg("room owner is required")
	}

	room := &Room{
		ID:        bson.NewObjectID(),
		Name:      name,
		Owner:     newRoom.Owner,
		Users:     newRoom.Users,
		CreatedAt: time.Now(),
	}
	if room.Users == nil {
		room.Users = []bson.ObjectID{}
	}

	if _, err := r.coll.InsertOne(ctx, room); err != nil {
		return nil, apperr.Store("failed to insert room", err)
	}
	return room, nil
}

// UpdateOne applies a partial field merge to an existing room and
// returns the updated document. Fields absent from the patch keep their
// stored value. The merge is a single atomic $set.
func (r *RoomsStore) UpdateOne(ctx context.Context, id bson.ObjectID, patch RoomPatch) (*Room, error) {
	set := bson.M{}
	if patch.Name != nil {
		name := normalize.Name(*patch.Name)
		if name == "" {
			return nil, apperr.InvalidArg("room name cannot be empty")
		}
		set["name"] = name
	}
	if patch.Owner != nil {
		if patch.Owner.IsZero() {
			return nil, apperr.InvalidArg("room owner cannot be empty")
		}
		set["owner"] = *patch.Owner
	}
	if patch.Users != nil {
		set["users"] = patch.Users
	}

	if len(set) == 0 {
		// Nothing to merge; still report not-found for a bad id.
		var room Room
		err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.NotFound("room not found")
			}
			return nil, apperr.Store("failed to find room", err)
		}
		return &room, nil
	}

	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

// AddUser appends a user id to the membership list. No duplicate check;
// the same user added twice appears twice. The append is an atomic
// $push, so concurrent adds on the same room cannot lose entries.
func (r *RoomsStore) AddUser(ctx context.Context, id, userID bson.ObjectID) (*Room, error) {
	if userID.IsZero() {
		return nil, apperr.InvalidArg("user id is required")
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$push": bson.M{"users": userID}})
}

// RemoveUser removes a user id from the membership list. Removing an id
// that is not a member is a defined no-op. Note $pull removes every
// occurrence, so a duplicated member loses all copies.
func (r *RoomsStore) RemoveUser(ctx context.Context, id, userID bson.ObjectID) (*Room, error) {
	if userID.IsZero() {
		return nil, apperr.InvalidArg("user id is required")
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$pull": bson.M{"users": userID}})
}

// findOneAndUpdate applies an update document atomically and returns
// the post-update room.
func (r *RoomsStore) findOneAndUpdate(ctx context.Context, id bson.ObjectID, update bson.M) (*Room, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var room Room
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("room not found")
		}
		return nil, apperr.Store("failed to update room", err)
	}
	return &room, nil
}
