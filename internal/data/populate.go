package data

import (
	"context"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// Reference resolution ("population") turns the bare ids stored on a
// document into embedded copies of the referenced records. Each batch of
// results is resolved with a fixed number of extra queries: one for the
// forwarded messages, one for every user touched by the batch. Expansion
// depth is capped by the view types themselves — a ForwardView keeps its
// own forward reference as a bare id, so a forward chain is never walked
// past the first hop.
//
// Dangling references (a deleted user or forwarded message) resolve to
// nil / are dropped from membership lists rather than failing the read.

// resolveRooms expands owner and membership references on a batch of
// rooms.
func (r *RoomsStore) resolveRooms(ctx context.Context, rooms []*Room) ([]*RoomView, error) {
	ids := lo.FlatMap(rooms, func(room *Room, _ int) []bson.ObjectID {
		return append([]bson.ObjectID{room.Owner}, room.Users...)
	})

	users, err := r.users.GetUsersByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, err
	}

	views := make([]*RoomView, 0, len(rooms))
	for _, room := range rooms {
		view := &RoomView{
			ID:        room.ID,
			Name:      room.Name,
			Owner:     users[room.Owner],
			Users:     make([]*PublicUser, 0, len(room.Users)),
			CreatedAt: room.CreatedAt,
		}
		for _, uid := range room.Users {
			if member, ok := users[uid]; ok {
				view.Users = append(view.Users, member)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// resolveMessages expands author and forward references on a batch of
// messages. The forwarded message's author is resolved in the same user
// batch as the top-level authors.
func (m *MessagesStore) resolveMessages(ctx context.Context, msgs []*Message) ([]*MessageView, error) {
	forwardIDs := lo.Uniq(lo.FilterMap(msgs, func(msg *Message, _ int) (bson.ObjectID, bool) {
		if msg.ForwardOf == nil {
			return bson.ObjectID{}, false
		}
		return *msg.ForwardOf, true
	}))

	forwards, err := m.loadForwards(ctx, forwardIDs)
	if err != nil {
		return nil, err
	}

	userIDs := lo.Map(msgs, func(msg *Message, _ int) bson.ObjectID { return msg.Author })
	for _, fwd := range forwards {
		userIDs = append(userIDs, fwd.Author)
	}

	users, err := m.users.GetUsersByIDs(ctx, lo.Uniq(userIDs))
	if err != nil {
		return nil, err
	}

	views := make([]*MessageView, 0, len(msgs))
	for _, msg := range msgs {
		view := &MessageView{
			ID:       msg.ID,
			Room:     msg.Room,
			Author:   users[msg.Author],
			Text:     msg.Text,
			SentAt:   msg.SentAt,
			EditedAt: msg.EditedAt,
		}
		if msg.ForwardOf != nil {
			if fwd, ok := forwards[*msg.ForwardOf]; ok {
				view.ForwardOf = &ForwardView{
					ID:        fwd.ID,
					Room:      fwd.Room,
					Author:    users[fwd.Author],
					Text:      fwd.Text,
					SentAt:    fwd.SentAt,
					EditedAt:  fwd.EditedAt,
					ForwardOf: fwd.ForwardOf,
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// loadForwards batch-loads forwarded messages keyed by id.
func (m *MessagesStore) loadForwards(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]*Message, error) {
	forwards := make(map[bson.ObjectID]*Message, len(ids))
	if len(ids) == 0 {
		return forwards, nil
	}

	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Store("failed to find forwarded messages", err)
	}
	defer cursor.Close(ctx)

	var docs []*Message
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Store("failed to decode forwarded messages", err)
	}

	for _, doc := range docs {
		forwards[doc.ID] = doc
	}
	return forwards, nil
}
