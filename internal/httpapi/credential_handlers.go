package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nanoncore/ma5801-olt-manager/internal/cliengine"
	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

func (a *App) handleListCredentials(c *gin.Context) {
	creds, err := a.db.ListCredentials()
	if err != nil {
		respondError(c, err)
		return
	}
	a.connMu.Lock()
	activeID := a.activeID
	a.connMu.Unlock()
	for i := range creds {
		creds[i].IsConnected = creds[i].ID == activeID
	}
	c.JSON(http.StatusOK, creds)
}

type createCredentialRequest struct {
	Name     string          `json:"name" binding:"required"`
	Host     string          `json:"host" binding:"required"`
	Port     int             `json:"port"`
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required"`
	Protocol model.Protocol  `json:"protocol"`
}

func (a *App) handleCreateCredential(c *gin.Context) {
	var req createCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Port == 0 {
		req.Port = 22
	}
	if req.Protocol == "" {
		req.Protocol = model.ProtocolSSH
	}

	sealed, err := a.secrets.Seal(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	cred, err := a.db.CreateCredential(model.Credential{
		Name:              req.Name,
		Host:              req.Host,
		Port:              req.Port,
		Username:          req.Username,
		EncryptedPassword: sealed,
		Protocol:          req.Protocol,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cred)
}

func (a *App) handleActivateCredential(c *gin.Context) {
	if err := a.db.ActivateCredential(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// handleDeleteCredential deletes a stored credential, including the one
// currently connected: spec §3 allows deletion "anytime including while
// active", forcing a disconnect rather than rejecting the request.
func (a *App) handleDeleteCredential(c *gin.Context) {
	id := c.Param("id")

	a.connMu.Lock()
	if a.activeID == id {
		if a.session != nil {
			a.session.Close()
		}
		a.session = nil
		a.activeID = ""
		a.orch.SetSession(nil)
	}
	a.connMu.Unlock()

	if err := a.db.DeleteCredential(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// handleConnect dials the OLT using the named stored credential, walks
// the login staircase (spec §4.B), and hands the resulting session to
// both the Fetch Orchestrator and the Bind/Unbind Controller's callers.
// Per spec §5's reconnection policy, this is always operator-initiated;
// there is no automatic reconnect.
func (a *App) handleConnect(c *gin.Context) {
	id := c.Param("id")
	creds, err := a.db.ListCredentials()
	if err != nil {
		respondError(c, err)
		return
	}
	var target *model.Credential
	for i := range creds {
		if creds[i].ID == id {
			target = &creds[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no credential with id %s", id)})
		return
	}

	// ListCredentials does not redact the password: its row already
	// carries the sealed EncryptedPassword, which is only left out of the
	// Credential JSON, so no re-query is needed to open it here.
	plaintext, err := a.secrets.Open(target.EncryptedPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	cfg := a.dialerConfig(target.Host, target.Port, target.Username, plaintext)

	session, vlanOutput, err := cliengine.Connect(cfg, a.log)
	if err != nil {
		respondError(c, err)
		return
	}

	a.connMu.Lock()
	if a.session != nil {
		a.session.Close()
	}
	a.session = session
	a.activeID = id
	a.connMu.Unlock()

	// display vlan all refuses to run inside config mode on some
	// firmwares; reuse the sample Connect captured in privileged mode
	// before config was entered, instead of letting the first RefreshAll
	// re-issue it from config and fail (spec §4.B/§4.E).
	a.orch.SeedVlanSample(vlanOutput)
	a.orch.SetSession(session)
	if err := a.db.TouchLastConnected(id); err != nil {
		a.log.Warn().Err(err).Msg("failed to record last_connected")
	}

	c.Status(http.StatusOK)
}
