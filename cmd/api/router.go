package main

import (
	"github.com/gin-gonic/gin"

	"github.com/alex20020702/internship-nest-chat/internal/middleware"
)

// newRouter assembles the route table. Everything outside /auth requires
// a valid access token; the credential endpoints are rate limited.
func newRouter(s *Server, limiter *middleware.LimiterStore) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	authGroup := r.Group("/auth")
	{
		limited := middleware.RateLimit(limiter)
		authGroup.POST("/register", limited, s.register)
		authGroup.POST("/login", limited, s.login)
		authGroup.POST("/login-token", limited, s.loginByToken)
		authGroup.POST("/self", s.requireAuth(), s.self)
	}

	rooms := r.Group("/rooms", s.requireAuth())
	{
		rooms.GET("", s.listRooms)
		rooms.GET("/member", s.listRoomsByMember)
		rooms.GET("/owned", s.listRoomsByOwner)
		rooms.POST("", s.createRoom)
		rooms.GET("/:id", s.getRoom)
		rooms.PATCH("/:id", s.updateRoom)
		rooms.PUT("/:id/users/:userId", s.addRoomUser)
		rooms.DELETE("/:id/users/:userId", s.removeRoomUser)
		rooms.GET("/:id/messages", s.listRoomMessages)
		rooms.GET("/:id/messages/search", s.searchRoomMessages)
	}

	msgs := r.Group("/messages", s.requireAuth())
	{
		msgs.POST("", s.createMessage)
		msgs.GET("", s.listMessagesByAuthor)
		msgs.GET("/:id", s.getMessage)
		msgs.PATCH("/:id", s.updateMessage)
	}

	return r
}
