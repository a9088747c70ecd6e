package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nanoncore/ma5801-olt-manager/internal/cliengine"
	"github.com/nanoncore/ma5801-olt-manager/internal/fetch"
	"github.com/nanoncore/ma5801-olt-manager/internal/inventory"
	"github.com/nanoncore/ma5801-olt-manager/internal/provision"
	"github.com/nanoncore/ma5801-olt-manager/internal/transport"
)

// respondError maps the spec §7 error taxonomy onto HTTP status codes:
// validation/precondition/permission errors are 4xx, upstream CLI and
// transport failures are 5xx.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case provision.IsPreconditionError(err), provision.IsNotFoundError(err):
		status = http.StatusBadRequest
	case inventory.IsNoIdAvailableError(err):
		status = http.StatusConflict
	case cliengine.IsDisconnectedError(err):
		status = http.StatusServiceUnavailable
	case cliengine.IsCliError(err), cliengine.IsTimeoutError(err):
		status = http.StatusBadGateway
	case provision.IsBindError(err):
		status = http.StatusBadGateway
	case fetch.IsRefreshError(err):
		status = http.StatusBadGateway
	case transport.IsTransportError(err):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
