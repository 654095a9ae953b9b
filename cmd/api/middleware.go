package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/alex20020702/internship-nest-chat/internal/auth"
	"github.com/alex20020702/internship-nest-chat/internal/data"
)

// claimsKey is the gin context key the auth middleware stores verified
// claims under.
const claimsKey = "auth_claims"

// requireAuth returns a middleware that enforces a valid Bearer token
// and attaches the verified claims to the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// currentClaims extracts the claims the auth middleware attached.
func currentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// currentUserID returns the authenticated user's id as an ObjectID.
func currentUserID(c *gin.Context) (bson.ObjectID, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := data.ParseID(claims.UserID)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
