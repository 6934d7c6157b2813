package handler

import (
	"user-service/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   service.UserService
	visits        *service.VisitCounter
	healthMessage string
}

func NewUserHandler(userService service.UserService, visits *service.VisitCounter, healthMessage string) *UserHandler {
	return &UserHandler{
		userService:   userService,
		visits:        visits,
		healthMessage: healthMessage,
	}
}

// RegisterRoutes mounts all routes. rateLimit guards the credential endpoints
// and may be nil.
func (h *UserHandler) RegisterRoutes(router *gin.Engine, rateLimit gin.HandlerFunc) {
	router.GET("/health", h.health)

	generalGroup := router.Group("/general")
	{
		generalGroup.GET("/health_check", h.healthCheck)
	}

	credentials := []gin.HandlerFunc{}
	if rateLimit != nil {
		credentials = append(credentials, rateLimit)
	}

	usersGroup := router.Group("/users")
	{
		usersGroup.POST("/register", append(credentials, h.register)...)
		usersGroup.POST("/login", append(credentials, h.login)...)
		usersGroup.POST("/logout", h.logout)
		usersGroup.GET("/profile", h.profile)
		usersGroup.PUT("/update", h.update)
		usersGroup.DELETE("/delete", h.deleteAccount)
		usersGroup.POST("/verify", h.verify)
	}
}
