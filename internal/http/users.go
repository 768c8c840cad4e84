package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/identity/internal/auth"
	"github.com/mrlokans/identity/internal/database/users"
)

// UserController serves the authenticated user's own record.
type UserController struct {
	users *users.Repository
}

// NewUserController creates a new user controller.
func NewUserController(repo *users.Repository) *UserController {
	return &UserController{users: repo}
}

// CurrentUser handles GET /user. The middleware has already verified the
// access token; the record just has to still exist.
func (uc *UserController) CurrentUser(c *gin.Context) {
	userID := auth.GetUserID(c)

	user, err := uc.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("current user: load user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, user)
}
