package store

import (
	"database/sql"
	"fmt"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// PutSession upserts a session row, satisfying authn.SessionStore. Spec
// §6 lists sessions as a durable table so a restart does not log every
// operator out.
func (db *DB) PutSession(s model.Session) error {
	_, err := db.conn.Exec(`
		INSERT INTO sessions (id, user_id, username, role, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`, s.ID, s.UserID, s.Username, s.Role, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("store: put session: %w", err)
	}
	return nil
}

// SessionByID satisfies authn.SessionStore.
func (db *DB) SessionByID(id string) (model.Session, bool, error) {
	row := db.conn.QueryRow(`
		SELECT id, user_id, username, role, expires_at FROM sessions WHERE id = $1
	`, id)
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.Username, &s.Role, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return model.Session{}, false, nil
	}
	if err != nil {
		return model.Session{}, false, fmt.Errorf("store: scan session: %w", err)
	}
	return s, true, nil
}

// DeleteSession satisfies authn.SessionStore. Deleting a session that
// does not exist is not an error.
func (db *DB) DeleteSession(id string) error {
	_, err := db.conn.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions sweeps rows past their expiry, called
// periodically alongside the refresh scheduler so the table does not
// grow unbounded.
func (db *DB) DeleteExpiredSessions() (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("store: delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
