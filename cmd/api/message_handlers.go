package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/internal/data"
	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

type createMessageRequest struct {
	Room string `json:"room" binding:"required"`
	Text string `json:"text" binding:"required"`
	// Author defaults to the authenticated user when omitted.
	Author    string     `json:"author"`
	SentAt    *time.Time `json:"sent_at"`
	ForwardOf *string    `json:"forward_of"`
}

type updateMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// queryTime parses an optional RFC3339 query parameter.
func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.InvalidArgf("invalid %s: %q is not RFC3339", name, raw)
	}
	return &t, nil
}

// dateWindow reads the optional from/to query parameters as zero-or-set
// times for the listing endpoints.
func dateWindow(c *gin.Context) (from, to time.Time, err error) {
	fromPtr, err := queryTime(c, "from")
	if err != nil {
		return from, to, err
	}
	toPtr, err := queryTime(c, "to")
	if err != nil {
		return from, to, err
	}
	if fromPtr != nil {
		from = *fromPtr
	}
	if toPtr != nil {
		to = *toPtr
	}
	return from, to, nil
}

// listRoomMessages returns the messages of a room, optionally windowed
// by ?from= and ?to= (RFC3339), ascending by sent_at.
func (s *Server) listRoomMessages(c *gin.Context) {
	roomID, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	from, to, err := dateWindow(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	msgs, err := s.msgs.FindAllByRoom(c.Request.Context(), roomID, from, to)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// listMessagesByAuthor returns the messages written by the subject user
// across all rooms, with the same optional window.
func (s *Server) listMessagesByAuthor(c *gin.Context) {
	authorID, ok := s.subjectUserID(c)
	if !ok {
		return
	}

	from, to, err := dateWindow(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	msgs, err := s.msgs.FindAllByAuthor(c.Request.Context(), authorID, from, to)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// searchRoomMessages filters a room's messages by optional free text
// (?text=), author (?author=) and date window (?from=/?to=).
func (s *Server) searchRoomMessages(c *gin.Context) {
	roomID, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	filter := data.SearchFilter{Text: c.Query("text")}

	if hex := c.Query("author"); hex != "" {
		author, err := data.ParseID(hex)
		if err != nil {
			s.respondError(c, err)
			return
		}
		filter.Author = &author
	}

	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		s.respondError(c, err)
		return
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		s.respondError(c, err)
		return
	}

	msgs, err := s.msgs.Search(c.Request.Context(), roomID, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// getMessage returns a single message, fully resolved.
func (s *Server) getMessage(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	msg, err := s.msgs.FindByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// createMessage persists a new message in a room.
func (s *Server) createMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID, err := data.ParseID(req.Room)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var author bson.ObjectID
	if req.Author != "" {
		if author, err = data.ParseID(req.Author); err != nil {
			s.respondError(c, err)
			return
		}
	} else {
		var ok bool
		if author, ok = currentUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth claims"})
			return
		}
	}

	newMsg := data.NewMessage{
		Room:   roomID,
		Author: author,
		Text:   req.Text,
		SentAt: time.Now(),
	}
	if req.SentAt != nil {
		newMsg.SentAt = *req.SentAt
	}
	if req.ForwardOf != nil {
		fwd, err := data.ParseID(*req.ForwardOf)
		if err != nil {
			s.respondError(c, err)
			return
		}
		newMsg.ForwardOf = &fwd
	}

	msg, err := s.msgs.AddOne(c.Request.Context(), newMsg)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// updateMessage replaces the text of a message; every other field is
// left untouched.
func (s *Server) updateMessage(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := s.msgs.UpdateOne(c.Request.Context(), id, req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
