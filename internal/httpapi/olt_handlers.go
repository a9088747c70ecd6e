package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleOltInfo issues `display version` fresh on every call — OLTInfo
// is never cached (spec §4.E).
func (a *App) handleOltInfo(c *gin.Context) {
	info, err := a.orch.GetOltInfo()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleRefresh triggers RefreshAll directly, bypassing the scheduled
// refresh's circuit breaker — an operator-triggered refresh is always
// attempted (spec §4.E/§9).
func (a *App) handleRefresh(c *gin.Context) {
	if err := a.orch.RefreshAll(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *App) handleRefreshStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.orch.Status())
}

// handleCapabilities exposes the active vendor capability matrix
// (SPEC_FULL.md's GET /api/olt/capabilities).
func (a *App) handleCapabilities(c *gin.Context) {
	c.JSON(http.StatusOK, a.caps)
}
