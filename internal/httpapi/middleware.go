package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nanoncore/ma5801-olt-manager/internal/authn"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

const sessionHeader = "x-session-id"
const sessionContextKey = "session"

// requestLogger logs each request at debug once it completes.
func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// requireSession validates the x-session-id header and stashes the
// resolved model.Session in gin's context for downstream handlers.
func (a *App) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sessionHeader)
		if id == "" {
			abortAuthError(c, authn.NewAuthError("missing x-session-id header", http.StatusUnauthorized))
			return
		}
		session, err := a.auth.Validate(id)
		if err != nil {
			abortAuthError(c, err)
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// requirePermission enforces spec §6's permission table for action.
func (a *App) requirePermission(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFromContext(c)
		if err := authn.Authorize(session.Role, action); err != nil {
			abortAuthError(c, err)
			return
		}
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) model.Session {
	v, _ := c.Get(sessionContextKey)
	session, _ := v.(model.Session)
	return session
}

func abortAuthError(c *gin.Context, err error) {
	status := http.StatusUnauthorized
	if ae, ok := err.(*authn.AuthError); ok {
		status = ae.Status
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
