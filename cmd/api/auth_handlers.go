package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alex20020702/internship-nest-chat/internal/auth"
	"github.com/alex20020702/internship-nest-chat/internal/data"
	"github.com/alex20020702/internship-nest-chat/pkg/apperr"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// sessionResponse is returned by every endpoint that establishes a
// session: a short-lived access token plus a rotating refresh token.
type sessionResponse struct {
	AccessToken  string           `json:"access_token"`
	ExpiresAt    time.Time        `json:"expires_at"`
	RefreshToken string           `json:"refresh_token"`
	User         *data.PublicUser `json:"user"`
}

// issueSession generates the access/refresh token pair for a user.
func (s *Server) issueSession(ctx context.Context, user *data.User) (*sessionResponse, error) {
	accessToken, expiresAt, err := s.auth.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.Issue(ctx, user.ID, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &sessionResponse{
		AccessToken:  accessToken,
		ExpiresAt:    expiresAt,
		RefreshToken: refresh.Token,
		User:         user.Public(),
	}, nil
}

// register creates a user and logs them in.
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// role is always assigned server-side, never taken from the request
	user, err := s.users.CreateUser(c.Request.Context(), req.Email, req.Name, hashed, data.RoleUser)
	if err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.issueSession(c.Request.Context(), user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// login authenticates with email and password.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// same answer for unknown email and wrong password
		if apperr.IsCode(err, apperr.CodeNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		s.respondError(c, err)
		return
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	session, err := s.issueSession(c.Request.Context(), user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// loginByToken exchanges a refresh token for a new session. The token is
// single-use; a new refresh token comes back with the session.
func (s *Server) loginByToken(c *gin.Context) {
	var req loginTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := s.tokens.Redeem(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.respondError(c, err)
		return
	}

	user, err := s.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.issueSession(c.Request.Context(), user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// self returns the current authenticated user.
func (s *Server) self(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth claims"})
		return
	}

	user, err := s.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
