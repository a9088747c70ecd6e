// Package store is the persistence layer for the three durable tables
// named in spec §6 — users, sessions, olt_credentials — backed by
// Postgres via database/sql and github.com/lib/pq. Everything else the
// system reports (ONU inventory, VLANs, profiles) is a live projection
// of the OLT and is never written here (see internal/inventory).
//
// Grounded on the teacher pack's omar251990/Protei_Monitoring
// pkg/database connection-pool and Liquibase-changelog shape, with its
// PLMN/KPI/alarm domain tables swapped for this system's own three.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Config holds the Postgres connection parameters (spec §6: sourced from
// DATABASE_URL).
type Config struct {
	DSN      string
	MaxConns int
	MaxIdle  int
}

// DB wraps the Postgres connection pool and runs schema migrations on
// open.
type DB struct {
	conn *sql.DB
}

// Open connects to Postgres, configures the pool, and runs migrations.
func Open(cfg Config) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.runMigrations(); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error { return db.conn.Close() }

// migration is one Liquibase-style changeset: applied once, tracked in
// changelog, re-run is a no-op.
type migration struct {
	ID          string
	Author      string
	Description string
	SQL         string
}

const createChangelogTables = `
CREATE TABLE IF NOT EXISTS databasechangelog (
	id VARCHAR(255) NOT NULL,
	author VARCHAR(255) NOT NULL,
	dateexecuted TIMESTAMP NOT NULL,
	orderexecuted INTEGER NOT NULL,
	description VARCHAR(255),
	PRIMARY KEY (id, author)
);
CREATE TABLE IF NOT EXISTS databasechangeloglock (
	id INTEGER NOT NULL PRIMARY KEY,
	locked BOOLEAN NOT NULL,
	lockgranted TIMESTAMP,
	lockedby VARCHAR(255)
);
INSERT INTO databasechangeloglock (id, locked) VALUES (1, FALSE) ON CONFLICT DO NOTHING;
`

func (db *DB) migrations() []migration {
	return []migration{
		{
			ID:          "001-create-users-table",
			Author:      "ma5801-olt-manager",
			Description: "Create users table",
			SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(64) PRIMARY KEY,
				username VARCHAR(100) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				role VARCHAR(20) NOT NULL,
				email VARCHAR(200),
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				created_by VARCHAR(64)
			);
			`,
		},
		{
			ID:          "002-create-sessions-table",
			Author:      "ma5801-olt-manager",
			Description: "Create sessions table",
			SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				id VARCHAR(32) PRIMARY KEY,
				user_id VARCHAR(64) NOT NULL,
				username VARCHAR(100) NOT NULL,
				role VARCHAR(20) NOT NULL,
				expires_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
			`,
		},
		{
			ID:          "003-create-olt-credentials-table",
			Author:      "ma5801-olt-manager",
			Description: "Create olt_credentials table",
			SQL: `
			CREATE TABLE IF NOT EXISTS olt_credentials (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(200) NOT NULL,
				host VARCHAR(255) NOT NULL,
				port INTEGER NOT NULL,
				username VARCHAR(100) NOT NULL,
				encrypted_password BYTEA NOT NULL,
				protocol VARCHAR(10) NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT FALSE,
				last_connected TIMESTAMP
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_olt_credentials_one_active
				ON olt_credentials ((is_active)) WHERE is_active;
			`,
		},
	}
}

func (db *DB) runMigrations() error {
	if _, err := db.conn.Exec(createChangelogTables); err != nil {
		return fmt.Errorf("create changelog tables: %w", err)
	}
	for _, m := range db.migrations() {
		if err := db.executeMigration(m); err != nil {
			return fmt.Errorf("migration %s: %w", m.ID, err)
		}
	}
	return nil
}

func (db *DB) executeMigration(m migration) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM databasechangelog WHERE id = $1 AND author = $2`,
		m.ID, m.Author,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := db.conn.Exec(m.SQL); err != nil {
		return err
	}

	_, err = db.conn.Exec(`
		INSERT INTO databasechangelog (id, author, dateexecuted, orderexecuted, description)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(orderexecuted), 0) + 1 FROM databasechangelog), $4)
	`, m.ID, m.Author, time.Now(), m.Description)
	return err
}
