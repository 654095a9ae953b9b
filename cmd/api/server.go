package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alex20020702/internship-nest-chat/internal/auth"
	"github.com/alex20020702/internship-nest-chat/internal/config"
	"github.com/alex20020702/internship-nest-chat/internal/data"
	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

// Server holds the stores and auth logic behind the HTTP handlers.
type Server struct {
	users  *data.UsersStore
	rooms  *data.RoomsStore
	msgs   *data.MessagesStore
	tokens *data.RefreshTokensStore
	auth   *auth.JWTManager
	cfg    *config.Config
	log    zerolog.Logger
}

// newServer returns a ready-to-use Server wired with stores and the auth
// manager.
func newServer(users *data.UsersStore, rooms *data.RoomsStore, msgs *data.MessagesStore,
	tokens *data.RefreshTokensStore, authMgr *auth.JWTManager, cfg *config.Config, log zerolog.Logger) *Server {
	return &Server{
		users:  users,
		rooms:  rooms,
		msgs:   msgs,
		tokens: tokens,
		auth:   authMgr,
		cfg:    cfg,
		log:    log,
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Stores attach
// codes; nothing here inspects error strings.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeAlreadyExists:
		status = http.StatusConflict
	case apperr.CodeUnauthenticated:
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		// store/driver failures carry internals the client should not see
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
