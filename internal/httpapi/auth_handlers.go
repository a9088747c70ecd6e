package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *App) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, session, err := a.auth.Login(req.Username, req.Password)
	if err != nil {
		abortAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "sessionId": session.ID})
}

func (a *App) handleLogout(c *gin.Context) {
	a.auth.Logout(c.GetHeader(sessionHeader))
	c.Status(http.StatusOK)
}

func (a *App) handleMe(c *gin.Context) {
	session := sessionFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"userId":   session.UserID,
		"username": session.Username,
		"role":     session.Role,
	})
}
