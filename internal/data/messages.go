package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// MessagesStore provides message database operations. Reads resolve the
// author and forward references, so it needs the users store alongside
// its own collection.
type MessagesStore struct {
	coll  *mongo.Collection
	users *UsersStore
}

// NewMessagesStore returns a MessagesStore using the given collection.
func NewMessagesStore(coll *mongo.Collection, users *UsersStore) *MessagesStore {
	return &MessagesStore{coll: coll, users: users}
}

// NewMessage carries the fields needed to create a message. Room,
// author and sent_at come from the caller; nothing is defaulted here
// except edited_at, which starts equal to sent_at.
type NewMessage struct {
	Room      bson.ObjectID
	Author    bson.ObjectID
	Text      string
	SentAt    time.Time
	ForwardOf *bson.ObjectID
}

// SearchFilter holds the optional search criteria. The date window is
// applied only when at least one bound is set; the missing bound then
// defaults to epoch or now respectively.
type SearchFilter struct {
	Text   string
	Author *bson.ObjectID
	From   *time.Time
	To     *time.Time
}

// FindAllByRoom returns the messages of a room whose edited_at falls in
// (from, to], ascending by sent_at, fully resolved. A zero from means
// "since forever"; a zero to means "until now".
func (m *MessagesStore) FindAllByRoom(ctx context.Context, roomID bson.ObjectID, from, to time.Time) ([]*MessageView, error) {
	if to.IsZero() {
		to = time.Now()
	}
	filter := bson.M{
		"room":      roomID,
		"edited_at": bson.M{"$gt": from, "$lte": to},
	}
	return m.findResolved(ctx, filter)
}

// FindAllByAuthor returns the messages written by a user across all
// rooms, same window, sort and resolution as FindAllByRoom.
func (m *MessagesStore) FindAllByAuthor(ctx context.Context, authorID bson.ObjectID, from, to time.Time) ([]*MessageView, error) {
	if to.IsZero() {
		to = time.Now()
	}
	filter := bson.M{
		"author":    authorID,
		"edited_at": bson.M{"$gt": from, "$lte": to},
	}
	return m.findResolved(ctx, filter)
}

// Search filters the messages of a room by optional free text, author
// and date window. With an empty filter it returns the whole room,
// ascending by sent_at.
func (m *MessagesStore) Search(ctx context.Context, roomID bson.ObjectID, search SearchFilter) ([]*MessageView, error) {
	filter := bson.M{"room": roomID}

	if search.Text != "" {
		// Delegated to the text index on the message body.
		filter["$text"] = bson.M{"$search": search.Text}
	}
	if search.Author != nil {
		filter["author"] = *search.Author
	}
	if search.From != nil || search.To != nil {
		from := time.Time{}
		to := time.Now()
		if search.From != nil {
			from = *search.From
		}
		if search.To != nil {
			to = *search.To
		}
		filter["edited_at"] = bson.M{"$gt": from, "$lte": to}
	}

	return m.findResolved(ctx, filter)
}

// FindByID returns a single message, fully resolved.
func (m *MessagesStore) FindByID(ctx context.Context, id bson.ObjectID) (*MessageView, error) {
	var msg Message
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, apperr.Store("failed to find message", err)
	}

	views, err := m.resolveMessages(ctx, []*Message{&msg})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// UpdateOne replaces the text of an existing message and stamps
// edited_at; every other field keeps its stored value. Atomic $set.
func (m *MessagesStore) UpdateOne(ctx context.Context, id bson.ObjectID, text string) (*Message, error) {
	if text == "" {
		return nil, apperr.InvalidArg("message text is required")
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"text": text, "edited_at": time.Now()}}

	var msg Message
	err := m.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, apperr.Store("failed to update message", err)
	}
	return &msg, nil
}

// AddOne assigns a fresh identifier, persists the message and returns
// the stored document.
func (m *MessagesStore) AddOne(ctx context.Context, newMessage NewMessage) (*Message, error) {
	if newMessage.Room.IsZero() {
		return nil, apperr.InvalidArg("message room is required")
	}
	if newMessage.Author.IsZero() {
		return nil, apperr.InvalidArg("message author is required")
	}
	if newMessage.Text == "" {
		return nil, apperr.InvalidArg("message text is required")
	}
	if newMessage.SentAt.IsZero() {
		return nil, apperr.InvalidArg("message sent_at is required")
	}

	msg := &Message{
		ID:        bson.NewObjectID(),
		Room:      newMessage.Room,
		Author:    newMessage.Author,
		Text:      newMessage.Text,
		SentAt:    newMessage.SentAt,
		EditedAt:  newMessage.SentAt,
		ForwardOf: newMessage.ForwardOf,
	}

	if _, err := m.coll.InsertOne(ctx, msg); err != nil {
		return nil, apperr.Store("failed to insert message", err)
	}
	return msg, nil
}

// findResolved runs a filter sorted ascending by sent_at and resolves
// references on every hit.
func (m *MessagesStore) findResolved(ctx context.Context, filter bson.M) ([]*MessageView, error) {
	opts := options.Find().SetSort(bson.M{"sent_at": 1})

	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Store("failed to list messages", err)
	}
	defer cursor.Close(ctx)

	var msgs []*Message
	if err = cursor.All(ctx, &msgs); err != nil {
		return nil, apperr.Store("failed to decode messages", err)
	}
	return m.resolveMessages(ctx, msgs)
}
