// Package data provides DB models and stores.
package data

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the coarse permission level attached to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User maps to the users collection (login identity + password hash).
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string        `bson:"email" json:"email"`
	Name      string        `bson:"name" json:"name"`
	Password  string        `bson:"password" json:"-"`
	Role      Role          `bson:"role" json:"role"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the shape embedded in resolved read responses. It never
// carries the password hash.
type PublicUser struct {
	ID    bson.ObjectID `bson:"_id" json:"id"`
	Email string        `bson:"email" json:"email"`
	Name  string        `bson:"name" json:"name"`
	Role  Role          `bson:"role" json:"role"`
}

// Public strips a stored user down to its embeddable form.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Room maps to the rooms collection. Owner and Users hold bare user ids;
// reads that resolve them return a RoomView instead.
type Room struct {
	ID        bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string          `bson:"name" json:"name"`
	Owner     bson.ObjectID   `bson:"owner" json:"owner"`
	Users     []bson.ObjectID `bson:"users" json:"users"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}

// RoomView is a room with owner and membership expanded to full user
// records. Detached copy; mutating it changes nothing in the store.
type RoomView struct {
	ID        bson.ObjectID `json:"id"`
	Name      string        `json:"name"`
	Owner     *PublicUser   `json:"owner"`
	Users     []*PublicUser `json:"users"`
	CreatedAt time.Time     `json:"created_at"`
}

// Message maps to the messages collection. Room, Author and ForwardOf
// hold bare ids; resolved reads return MessageView.
//
// EditedAt is the temporal filter key for every date-windowed query. It
// is set to SentAt at creation so never-edited messages still fall inside
// creation-time windows, and refreshed on every text edit.
type Message struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Room      bson.ObjectID  `bson:"room" json:"room"`
	Author    bson.ObjectID  `bson:"author" json:"author"`
	Text      string         `bson:"text" json:"text"`
	SentAt    time.Time      `bson:"sent_at" json:"sent_at"`
	EditedAt  time.Time      `bson:"edited_at" json:"edited_at"`
	ForwardOf *bson.ObjectID `bson:"forward_of,omitempty" json:"forward_of,omitempty"`
}

// ForwardView is a forwarded message embedded in a MessageView. Its
// author is resolved but its own forward reference, if any, stays a bare
// id — expansion stops here.
type ForwardView struct {
	ID        bson.ObjectID  `json:"id"`
	Room      bson.ObjectID  `json:"room"`
	Author    *PublicUser    `json:"author"`
	Text      string         `json:"text"`
	SentAt    time.Time      `json:"sent_at"`
	EditedAt  time.Time      `json:"edited_at"`
	ForwardOf *bson.ObjectID `json:"forward_of,omitempty"`
}

// MessageView is a message with author and forward reference expanded.
type MessageView struct {
	ID        bson.ObjectID `json:"id"`
	Room      bson.ObjectID `json:"room"`
	Author    *PublicUser   `json:"author"`
	Text      string        `json:"text"`
	SentAt    time.Time     `json:"sent_at"`
	EditedAt  time.Time     `json:"edited_at"`
	ForwardOf *ForwardView  `json:"forward_of,omitempty"`
}

// RefreshToken maps to the refresh_tokens collection. Tokens are opaque
// uuid strings, single-use: redeemed tokens are deleted on exchange.
type RefreshToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Token     string        `bson:"token" json:"token"`
	UserID    bson.ObjectID `bson:"user_id" json:"-"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time     `bson:"created_at" json:"-"`
}
