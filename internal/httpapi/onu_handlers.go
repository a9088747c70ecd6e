package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
	"github.com/nanoncore/ma5801-olt-manager/internal/provision"
)

func (a *App) handleUnbound(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.UnboundList())
}

func (a *App) handleUnboundCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": len(a.cache.UnboundList())})
}

func (a *App) handleBound(c *gin.Context) {
	c.JSON(http.StatusOK, a.cache.BoundList())
}

type validateRequest struct {
	SerialNumber string `json:"serialNumber" binding:"required"`
}

func (a *App) handleValidate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := provision.Validate(a.cache, req.SerialNumber); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *App) handleVerify(c *gin.Context) {
	c.JSON(http.StatusOK, provision.Verify(a.cache, c.Param("sn")))
}

func (a *App) handleBind(c *gin.Context) {
	var req model.BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := a.liveSession()
	if err != nil {
		respondError(c, err)
		return
	}

	bound, err := a.bindCtl.Bind(session, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bound)
}

func (a *App) handleUnbind(c *gin.Context) {
	var req model.UnbindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := a.liveSession()
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.bindCtl.Unbind(session, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *App) handleNextID(c *gin.Context) {
	port := c.Query("port")
	if port == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "port query parameter is required"})
		return
	}
	id, err := a.cache.NextFreeOnuId(port)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nextId": id, "maxId": 127})
}
