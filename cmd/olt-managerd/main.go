// Command olt-managerd is the HTTP management-plane daemon: it mediates
// between a browser REST API and a single MA5801-family OLT over an
// interactive SSH CLI session. Built as a cobra root command, the same
// way cmd/nano-agent/main.go wires its subcommands.
package main

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nanoncore/ma5801-olt-manager/internal/authn"
	"github.com/nanoncore/ma5801-olt-manager/internal/config"
	"github.com/nanoncore/ma5801-olt-manager/internal/httpapi"
	"github.com/nanoncore/ma5801-olt-manager/internal/logging"
	"github.com/nanoncore/ma5801-olt-manager/internal/secretbox"
	"github.com/nanoncore/ma5801-olt-manager/internal/store"
	"github.com/nanoncore/ma5801-olt-manager/internal/tlscert"
)

var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	superAdminPassword string
	useTLS             bool
	logLevel           string
	logPath            string
)

// sessionSweepInterval governs how often expired session rows are purged.
const sessionSweepInterval = 15 * time.Minute

var rootCmd = &cobra.Command{
	Use:     "olt-managerd",
	Short:   "Management-plane daemon for a Huawei MA5801-series GPON OLT",
	Version: version,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("olt-managerd version %s (commit: %s, built: %s)\n", version, commit, buildDate)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the users/sessions/olt_credentials schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := store.Open(store.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			return err
		}
		return db.Close()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background OLT refresh scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&superAdminPassword, "super-admin-password", os.Getenv("SUPER_ADMIN_PASSWORD"), "bypass password for the hardcoded superadmin account")
	serveCmd.Flags().BoolVar(&useTLS, "tls", false, "serve HTTPS with a generated self-signed certificate")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&logPath, "log-file", "", "rotate logs to this path instead of stdout")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if superAdminPassword == "" {
		return fmt.Errorf("serve: --super-admin-password (or SUPER_ADMIN_PASSWORD) is required")
	}

	log := logging.New(logging.Config{Level: logLevel, Path: logPath, Console: logPath == ""})

	db, err := store.Open(store.Config{DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("serve: open store: %w", err)
	}
	defer db.Close()

	secrets, err := secretbox.New(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("serve: secretbox: %w", err)
	}

	authSvc, err := authn.New(db, db, superAdminPassword)
	if err != nil {
		return fmt.Errorf("serve: authn: %w", err)
	}

	app := httpapi.NewApp(db, authSvc, secrets, log)
	router := app.Router()
	app.StartScheduler(cfg.RefreshInterval)
	go sweepExpiredSessions(db, log)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Bool("tls", useTLS).Msg("starting olt-managerd")

	if !useTLS {
		return http.ListenAndServe(addr, router)
	}

	cert, err := tlscert.Generate("olt-managerd", nil, []net.IP{net.ParseIP("127.0.0.1")})
	if err != nil {
		return fmt.Errorf("serve: generate TLS cert: %w", err)
	}
	server := &http.Server{
		Addr:      addr,
		Handler:   router,
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}
	return server.ListenAndServeTLS("", "")
}

// sweepExpiredSessions deletes expired session rows on a fixed interval so
// the sessions table does not grow unbounded (spec §6 durable table).
func sweepExpiredSessions(db *store.DB, log zerolog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		n, err := db.DeleteExpiredSessions()
		if err != nil {
			log.Warn().Err(err).Msg("session sweep failed")
			continue
		}
		if n > 0 {
			log.Debug().Int64("deleted", n).Msg("swept expired sessions")
		}
	}
}
