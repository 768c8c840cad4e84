// Package http wires the HTTP surface: router, middleware and the handlers
// that sit outside the auth flows.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/identity/internal/auth"
	"github.com/mrlokans/identity/internal/database/users"
)

// RouterConfig receives all router dependencies, improving testability and
// reducing parameter count.
type RouterConfig struct {
	AuthController *auth.Controller
	AuthMiddleware *auth.Middleware
	Users          *users.Repository
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	router.GET("/api/healthcheck", Healthcheck)

	// Auth flows: register, login, refresh, logout, verify, reset
	cfg.AuthController.RegisterRoutes(router)

	// Routes requiring a valid access token
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.Handler())
	{
		userController := NewUserController(cfg.Users)
		protected.GET("/user", userController.CurrentUser)
	}

	return router
}

// Healthcheck reports service liveness.
func Healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Healthy"})
}
