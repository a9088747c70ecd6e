package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *App) handleLineProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.LineProfiles())
}

func (a *App) handleServiceProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.ServiceProfiles())
}

func (a *App) handleVlans(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.Vlans())
}

func (a *App) handleTr069Profiles(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.Tr069Profiles())
}

// handleGponPorts returns the F/S/P ports that bound or unbound ONUs were
// seen on in the last refresh (spec §6). No slot or board scan is issued,
// so a port with no ONU on it is not listed.
func (a *App) handleGponPorts(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.GponPorts())
}
