// Package httpapi is the External Surface Adapter (spec §4.H): a thin
// gin router translating JSON HTTP requests into calls against authn,
// inventory, fetch, and provision, grounded in the retrieval pack's
// gin-based OLT/ONT gateway router (stefanfredik-go-nms
// internal/api-gateway/router.go) for route-grouping shape.
package httpapi

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nanoncore/ma5801-olt-manager/internal/authn"
	"github.com/nanoncore/ma5801-olt-manager/internal/capabilities"
	"github.com/nanoncore/ma5801-olt-manager/internal/cliengine"
	"github.com/nanoncore/ma5801-olt-manager/internal/fetch"
	"github.com/nanoncore/ma5801-olt-manager/internal/inventory"
	"github.com/nanoncore/ma5801-olt-manager/internal/provision"
	"github.com/nanoncore/ma5801-olt-manager/internal/secretbox"
	"github.com/nanoncore/ma5801-olt-manager/internal/store"
	"github.com/nanoncore/ma5801-olt-manager/internal/transport"
)

// App bundles every component the adapter drives. One App exists per
// process; it owns the single live OLT connection.
type App struct {
	log     zerolog.Logger
	db      *store.DB
	auth    *authn.Service
	secrets *secretbox.Box
	cache   *inventory.Cache
	caps    capabilities.MA5801Capabilities
	orch    *fetch.Orchestrator
	bindCtl *provision.Controller

	connMu     sync.Mutex
	session    *cliengine.Session
	activeID   string // credential id currently connected, if any
}

// NewApp wires the components above into one App, ready for Router().
func NewApp(db *store.DB, auth *authn.Service, secrets *secretbox.Box, log zerolog.Logger) *App {
	cache := inventory.New()
	caps, err := capabilities.NewRegistry().Get("huawei")
	if err != nil {
		// NewRegistry always pre-registers "huawei"; this would only fire
		// if that registration were removed without updating this lookup.
		panic(err)
	}
	return &App{
		log:     log,
		db:      db,
		auth:    auth,
		secrets: secrets,
		cache:   cache,
		caps:    caps,
		orch:    fetch.New(cache, caps, "0/1", log),
		bindCtl: provision.New(cache),
	}
}

// Router builds the gin.Engine with every route from spec §6.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(a.requestLogger())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", a.handleLogin)
			auth.POST("/logout", a.requireSession(), a.handleLogout)
			auth.GET("/me", a.requireSession(), a.handleMe)
		}

		users := api.Group("/users", a.requireSession())
		{
			users.GET("", a.requirePermission("user:list"), a.handleListUsers)
			users.POST("", a.requirePermission("user:create"), a.handleCreateUser)
			users.DELETE("/:id", a.requirePermission("user:delete"), a.handleDeleteUser)
		}

		credentials := api.Group("/olt/credentials", a.requireSession())
		{
			credentials.GET("", a.requirePermission("olt:configure"), a.handleListCredentials)
			credentials.POST("", a.requirePermission("olt:configure"), a.handleCreateCredential)
			credentials.PATCH("/:id", a.requirePermission("olt:configure"), a.handleActivateCredential)
			credentials.DELETE("/:id", a.requirePermission("olt:configure"), a.handleDeleteCredential)
		}
		api.POST("/olt/connect/:id", a.requireSession(), a.requirePermission("olt:configure"), a.handleConnect)

		olt := api.Group("/olt", a.requireSession())
		{
			olt.GET("/info", a.requirePermission("olt:view"), a.handleOltInfo)
			olt.POST("/refresh", a.requirePermission("olt:view"), a.handleRefresh)
			olt.GET("/refresh/status", a.requirePermission("olt:view"), a.handleRefreshStatus)
			olt.GET("/capabilities", a.requirePermission("olt:view"), a.handleCapabilities)
		}

		onu := api.Group("/onu", a.requireSession())
		{
			onu.GET("/unbound", a.requirePermission("onu:view"), a.handleUnbound)
			onu.GET("/unbound/count", a.requirePermission("onu:view"), a.handleUnboundCount)
			onu.GET("/bound", a.requirePermission("onu:view"), a.handleBound)
			onu.POST("/validate", a.requirePermission("onu:view"), a.handleValidate)
			onu.GET("/verify/:sn", a.requirePermission("onu:view"), a.handleVerify)
			onu.POST("/bind", a.requirePermission("onu:bind"), a.handleBind)
			onu.POST("/unbind", a.requirePermission("onu:bind"), a.handleUnbind)
			onu.GET("/next-id", a.requirePermission("onu:view"), a.handleNextID)
		}

		profiles := api.Group("", a.requireSession())
		{
			profiles.GET("/profiles/line", a.requirePermission("profiles:view"), a.handleLineProfiles)
			profiles.GET("/profiles/service", a.requirePermission("profiles:view"), a.handleServiceProfiles)
			profiles.GET("/vlans", a.requirePermission("vlans:view"), a.handleVlans)
			profiles.GET("/tr069-profiles", a.requirePermission("profiles:view"), a.handleTr069Profiles)
			profiles.GET("/gpon-ports", a.requirePermission("olt:view"), a.handleGponPorts)
		}
	}

	return r
}

// dialerConfig builds a transport.Config from a stored, decrypted
// credential.
func (a *App) dialerConfig(host string, port int, username, password string) transport.Config {
	return transport.Config{Host: host, Port: port, Username: username, Password: password}
}

// StartScheduler begins the periodic background refresh at interval
// (spec §6 env var OLT_REFRESH_INTERVAL), breaker-gated per §4.E.
func (a *App) StartScheduler(interval time.Duration) { a.orch.StartScheduler(interval) }

// liveSession returns the current CLI session, or a DisconnectedError if
// no credential has been connected yet (spec §5: no automatic reconnect).
func (a *App) liveSession() (*cliengine.Session, error) {
	a.connMu.Lock()
	defer a.connMu.Unlock()
	if a.session == nil {
		return nil, cliengine.NewDisconnectedError("no OLT connected")
	}
	return a.session, nil
}
