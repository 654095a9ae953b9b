package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/internal/data"
)

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
	// Owner defaults to the authenticated user when omitted.
	Owner string   `json:"owner"`
	Users []string `json:"users"`
}

type updateRoomRequest struct {
	Name  *string   `json:"name"`
	Owner *string   `json:"owner"`
	Users *[]string `json:"users"`
}

// parseIDList converts a list of hex ids, rejecting the whole request on
// the first malformed entry.
func parseIDList(hexes []string) ([]bson.ObjectID, error) {
	ids := make([]bson.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := data.ParseID(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// pathID parses the ":id" path parameter.
func (s *Server) pathID(c *gin.Context, name string) (bson.ObjectID, bool) {
	id, err := data.ParseID(c.Param(name))
	if err != nil {
		s.respondError(c, err)
		return bson.ObjectID{}, false
	}
	return id, true
}

// subjectUserID resolves the user a listing is scoped to: the ?user=
// query parameter when present, the authenticated user otherwise.
func (s *Server) subjectUserID(c *gin.Context) (bson.ObjectID, bool) {
	if hex := c.Query("user"); hex != "" {
		id, err := data.ParseID(hex)
		if err != nil {
			s.respondError(c, err)
			return bson.ObjectID{}, false
		}
		return id, true
	}

	id, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth claims"})
		return bson.ObjectID{}, false
	}
	return id, true
}

// listRooms returns every room, or the rooms matching ?name= exactly.
// The unfiltered listing keeps bare ids; the name filter resolves
// owner and members.
func (s *Server) listRooms(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		rooms, err := s.rooms.FindByName(c.Request.Context(), name)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rooms)
		return
	}

	rooms, err := s.rooms.FindAll(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// listRoomsByMember returns the rooms the subject user is a member of.
func (s *Server) listRoomsByMember(c *gin.Context) {
	userID, ok := s.subjectUserID(c)
	if !ok {
		return
	}

	rooms, err := s.rooms.FindAllByMember(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// listRoomsByOwner returns the rooms the subject user owns.
func (s *Server) listRoomsByOwner(c *gin.Context) {
	userID, ok := s.subjectUserID(c)
	if !ok {
		return
	}

	rooms, err := s.rooms.FindAllByOwner(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// getRoom returns a single room with owner and members resolved.
func (s *Server) getRoom(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	room, err := s.rooms.FindByID(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// createRoom persists a new room owned by the request's owner field or,
// when omitted, the authenticated user.
func (s *Server) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var owner bson.ObjectID
	if req.Owner != "" {
		var err error
		if owner, err = data.ParseID(req.Owner); err != nil {
			s.respondError(c, err)
			return
		}
	} else {
		var ok bool
		if owner, ok = currentUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth claims"})
			return
		}
	}

	users, err := parseIDList(req.Users)
	if err != nil {
		s.respondError(c, err)
		return
	}

	room, err := s.rooms.AddOne(c.Request.Context(), data.NewRoom{
		Name:  req.Name,
		Owner: owner,
		Users: users,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// updateRoom applies a partial field merge to a room.
func (s *Server) updateRoom(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := data.RoomPatch{Name: req.Name}
	if req.Owner != nil {
		owner, err := data.ParseID(*req.Owner)
		if err != nil {
			s.respondError(c, err)
			return
		}
		patch.Owner = &owner
	}
	if req.Users != nil {
		users, err := parseIDList(*req.Users)
		if err != nil {
			s.respondError(c, err)
			return
		}
		patch.Users = users
	}

	room, err := s.rooms.UpdateOne(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// addRoomUser appends a user to the room's membership list.
func (s *Server) addRoomUser(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := s.pathID(c, "userId")
	if !ok {
		return
	}

	room, err := s.rooms.AddUser(c.Request.Context(), id, userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// removeRoomUser removes a user from the room's membership list.
// Removing a non-member succeeds and changes nothing.
func (s *Server) removeRoomUser(c *gin.Context) {
	id, ok := s.pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := s.pathID(c, "userId")
	if !ok {
		return
	}

	room, err := s.rooms.RemoveUser(c.Request.Context(), id, userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
