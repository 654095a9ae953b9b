package data

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// mustAddMessage inserts a message or fails the test.
func mustAddMessage(t *testing.T, msgs *MessagesStore, newMsg NewMessage) *Message {
	t.Helper()
	msg, err := msgs.AddOne(context.Background(), newMsg)
	if err != nil {
		t.Fatalf("AddOne failed: %v", err)
	}
	return msg
}

func TestMessagesRoundTripWithForward(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	u1 := mustCreateUser(t, users, "u1@example.com", "U1")
	u2 := mustCreateUser(t, users, "u2@example.com", "U2")
	roomID := bson.NewObjectID()

	t0 := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
	first := mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u1.ID, Text: "hi", SentAt: t0})
	second := mustAddMessage(t, msgs, NewMessage{
		Room: roomID, Author: u2.ID, Text: "hi back",
		SentAt: t0.Add(time.Minute), ForwardOf: &first.ID,
	})

	// round trip: the stored document equals the input
	got, err := msgs.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindById failed: %v", err)
	}
	if got.Text != "hi" || got.Room != roomID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Author == nil || got.Author.ID != u1.ID {
		t.Fatalf("author not resolved: %+v", got.Author)
	}
	if got.ForwardOf != nil {
		t.Fatalf("forward_of should be absent, got %+v", got.ForwardOf)
	}
	if !got.EditedAt.Equal(t0) {
		t.Fatalf("edited_at should default to sent_at, got %v", got.EditedAt)
	}

	// room listing: both messages, ascending by sent_at, forward
	// resolved including the forwarded message's author
	list, err := msgs.FindAllByRoom(ctx, roomID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FindAllByRoom failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatal("messages not sorted ascending by sent_at")
	}
	fwd := list[1].ForwardOf
	if fwd == nil || fwd.ID != first.ID || fwd.Text != "hi" {
		t.Fatalf("forward not resolved: %+v", fwd)
	}
	if fwd.Author == nil || fwd.Author.ID != u1.ID {
		t.Fatalf("forwarded author not resolved: %+v", fwd.Author)
	}
}

func TestMessagesForwardDepthCapped(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	u := mustCreateUser(t, users, "u@example.com", "U")
	roomID := bson.NewObjectID()
	t0 := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)

	first := mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "a", SentAt: t0})
	second := mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "b", SentAt: t0.Add(time.Minute), ForwardOf: &first.ID})
	third := mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "c", SentAt: t0.Add(2 * time.Minute), ForwardOf: &second.ID})

	got, err := msgs.FindByID(ctx, third.ID)
	if err != nil {
		t.Fatalf("FindById failed: %v", err)
	}
	if got.ForwardOf == nil || got.ForwardOf.ID != second.ID {
		t.Fatalf("first hop not resolved: %+v", got.ForwardOf)
	}
	// the chain stops after one hop: the forwarded message's own
	// forward reference stays a bare id
	if got.ForwardOf.ForwardOf == nil || *got.ForwardOf.ForwardOf != first.ID {
		t.Fatalf("second hop should stay a bare id, got %v", got.ForwardOf.ForwardOf)
	}
}

func TestMessagesDateWindowBounds(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	u := mustCreateUser(t, users, "u@example.com", "U")
	roomID := bson.NewObjectID()

	t0 := time.Now().Add(-3 * time.Hour).UTC().Truncate(time.Millisecond)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)
	mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "at t0", SentAt: t0})
	atT1 := mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "at t1", SentAt: t1})
	mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "at t2", SentAt: t2})

	// window (t0, t1]: lower bound exclusive, upper bound inclusive
	list, err := msgs.FindAllByRoom(ctx, roomID, t0, t1)
	if err != nil {
		t.Fatalf("FindAllByRoom failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != atT1.ID {
		t.Fatalf("expected exactly the t1 message, got %d messages", len(list))
	}

	// zero to-date defaults to now: everything after t0
	list, err = msgs.FindAllByRoom(ctx, roomID, t0, time.Time{})
	if err != nil {
		t.Fatalf("FindAllByRoom failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 messages after t0, got %d", len(list))
	}
}

func TestMessagesFindAllByAuthorCrossesRooms(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	author := mustCreateUser(t, users, "author@example.com", "Author")
	other := mustCreateUser(t, users, "other@example.com", "Other")

	roomA := bson.NewObjectID()
	roomB := bson.NewObjectID()
	t0 := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)

	mustAddMessage(t, msgs, NewMessage{Room: roomA, Author: author.ID, Text: "in A", SentAt: t0})
	mustAddMessage(t, msgs, NewMessage{Room: roomB, Author: author.ID, Text: "in B", SentAt: t0.Add(time.Minute)})
	mustAddMessage(t, msgs, NewMessage{Room: roomA, Author: other.ID, Text: "someone else", SentAt: t0.Add(2 * time.Minute)})

	list, err := msgs.FindAllByAuthor(ctx, author.ID, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("FindAllByAuthor failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 messages across rooms, got %d", len(list))
	}
	if list[0].Text != "in A" || list[1].Text != "in B" {
		t.Fatalf("unexpected order or content: %q, %q", list[0].Text, list[1].Text)
	}
}

func TestMessagesSearch(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	alice := mustCreateUser(t, users, "alice@example.com", "Alice")
	bob := mustCreateUser(t, users, "bob@example.com", "Bob")
	roomID := bson.NewObjectID()
	otherRoom := bson.NewObjectID()

	t0 := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Millisecond)
	mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: alice.ID, Text: "deployment finished", SentAt: t0})
	mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: bob.ID, Text: "lunch plans", SentAt: t0.Add(time.Minute)})
	mustAddMessage(t, msgs, NewMessage{Room: otherRoom, Author: alice.ID, Text: "deployment broken", SentAt: t0.Add(2 * time.Minute)})

	// no criteria: the whole room, ascending by sent_at
	all, err := msgs.Search(ctx, roomID, SearchFilter{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 messages for empty criteria, got %d", len(all))
	}
	if !all[0].SentAt.Before(all[1].SentAt) {
		t.Fatal("search results not sorted ascending by sent_at")
	}

	// free text is scoped to the room: the other room's hit is excluded
	byText, err := msgs.Search(ctx, roomID, SearchFilter{Text: "deployment"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byText) != 1 || byText[0].Text != "deployment finished" {
		t.Fatalf("text search wrong: %d hits", len(byText))
	}

	// author filter
	byAuthor, err := msgs.Search(ctx, roomID, SearchFilter{Author: &bob.ID})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].Text != "lunch plans" {
		t.Fatalf("author search wrong: %d hits", len(byAuthor))
	}

	// from without to: window ends now, so only the later message hits
	from := t0
	windowed, err := msgs.Search(ctx, roomID, SearchFilter{From: &from})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(windowed) != 1 || windowed[0].Text != "lunch plans" {
		t.Fatalf("windowed search wrong: %d hits", len(windowed))
	}
}

func TestMessagesUpdateTextOnly(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	u := mustCreateUser(t, users, "u@example.com", "U")
	roomID := bson.NewObjectID()
	t0 := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)

	msg := mustAddMessage(t, msgs, NewMessage{Room: roomID, Author: u.ID, Text: "old", SentAt: t0})

	updated, err := msgs.UpdateOne(ctx, msg.ID, "new")
	if err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}
	if updated.Text != "new" {
		t.Fatalf("text not updated: %s", updated.Text)
	}
	if updated.Room != roomID || updated.Author != u.ID || !updated.SentAt.Equal(t0) {
		t.Fatalf("fields other than text changed: %+v", updated)
	}
	if !updated.EditedAt.After(t0) {
		t.Fatalf("edited_at not refreshed: %v", updated.EditedAt)
	}

	_, err = msgs.UpdateOne(ctx, bson.NewObjectID(), "whatever")
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMessagesValidation(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	msgs := NewMessagesStore(c.MessagesCollection(), users)
	ctx := context.Background()

	_, err := msgs.AddOne(ctx, NewMessage{Author: bson.NewObjectID(), Text: "x", SentAt: time.Now()})
	if !apperr.IsCode(err, apperr.CodeInvalidArgument) {
		t.Fatalf("expected invalid-argument for missing room, got %v", err)
	}

	_, err = msgs.AddOne(ctx, NewMessage{Room: bson.NewObjectID(), Author: bson.NewObjectID(), SentAt: time.Now()})
	if !apperr.IsCode(err, apperr.CodeInvalidArgument) {
		t.Fatalf("expected invalid-argument for missing text, got %v", err)
	}

	_, err = msgs.FindByID(ctx, bson.NewObjectID())
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
