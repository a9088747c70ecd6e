package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// CreateCredential stores a new OLT connection profile. The password
// must already be sealed by internal/secretbox — this package never
// sees plaintext.
func (db *DB) CreateCredential(c model.Credential) (model.Credential, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(`
		INSERT INTO olt_credentials (id, name, host, port, username, encrypted_password, protocol, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Host, c.Port, c.Username, c.EncryptedPassword, c.Protocol, c.IsActive)
	if err != nil {
		return model.Credential{}, fmt.Errorf("store: create credential: %w", err)
	}
	return c, nil
}

// ListCredentials returns every stored connection profile.
func (db *DB) ListCredentials() ([]model.Credential, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, host, port, username, encrypted_password, protocol, is_active, last_connected
		FROM olt_credentials ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list credentials: %w", err)
	}
	defer rows.Close()

	var creds []model.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// ActiveCredential returns the single credential with is_active set, if
// any (spec §6: at most one credential is active at a time).
func (db *DB) ActiveCredential() (model.Credential, bool, error) {
	row := db.conn.QueryRow(`
		SELECT id, name, host, port, username, encrypted_password, protocol, is_active, last_connected
		FROM olt_credentials WHERE is_active LIMIT 1
	`)
	c, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return model.Credential{}, false, nil
	}
	if err != nil {
		return model.Credential{}, false, err
	}
	return c, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(row scanner) (model.Credential, error) {
	var c model.Credential
	var lastConnected sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Host, &c.Port, &c.Username, &c.EncryptedPassword, &c.Protocol, &c.IsActive, &lastConnected)
	if err != nil {
		return model.Credential{}, fmt.Errorf("store: scan credential: %w", err)
	}
	if lastConnected.Valid {
		c.LastConnected = &lastConnected.Time
	}
	return c, nil
}

// ActivateCredential marks one credential active and every other
// inactive, in a single transaction (spec §6: switching the active OLT
// is atomic).
func (db *DB) ActivateCredential(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: activate credential: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE olt_credentials SET is_active = FALSE WHERE is_active`); err != nil {
		return fmt.Errorf("store: activate credential: clear: %w", err)
	}
	res, err := tx.Exec(`UPDATE olt_credentials SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: activate credential: set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: activate credential: no credential with id %s", id)
	}
	return tx.Commit()
}

// DeleteCredential removes a stored connection profile.
func (db *DB) DeleteCredential(id string) error {
	_, err := db.conn.Exec(`DELETE FROM olt_credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete credential: %w", err)
	}
	return nil
}

// TouchLastConnected records a successful dial against a credential.
func (db *DB) TouchLastConnected(id string) error {
	_, err := db.conn.Exec(`UPDATE olt_credentials SET last_connected = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: touch last_connected: %w", err)
	}
	return nil
}
