package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nanoncore/ma5801-olt-manager/internal/authn"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

func (a *App) handleListUsers(c *gin.Context) {
	users, err := a.db.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Username string     `json:"username" binding:"required"`
	Password string     `json:"password" binding:"required"`
	Role     model.Role `json:"role" binding:"required"`
	Email    string     `json:"email"`
}

func (a *App) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := sessionFromContext(c)
	if !authn.CanCreateUser(actor.Role, req.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "role may not create a user with that role"})
		return
	}

	hash, err := authn.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := a.db.CreateUser(model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Email:        req.Email,
		Active:       true,
		CreatedAt:    time.Now(),
		CreatedBy:    actor.UserID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *App) handleDeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := a.db.DeleteUser(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
