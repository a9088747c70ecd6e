package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// UserByUsername satisfies authn.UserStore.
func (db *DB) UserByUsername(username string) (model.User, bool, error) {
	row := db.conn.QueryRow(`
		SELECT id, username, password_hash, role, email, active, created_at, created_by
		FROM users WHERE username = $1
	`, username)
	return scanUser(row)
}

// UserByID looks a user up by primary key, for handlers that already
// hold a session's UserID.
func (db *DB) UserByID(id string) (model.User, bool, error) {
	row := db.conn.QueryRow(`
		SELECT id, username, password_hash, role, email, active, created_at, created_by
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (model.User, bool, error) {
	var u model.User
	var email sql.NullString
	var createdBy sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &email, &u.Active, &u.CreatedAt, &createdBy)
	if err == sql.ErrNoRows {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("store: scan user: %w", err)
	}
	u.Email = email.String
	u.CreatedBy = createdBy.String
	return u, true, nil
}

// ListUsers returns every account, ordered by creation time (spec §6
// user:list).
func (db *DB) ListUsers() ([]model.User, error) {
	rows, err := db.conn.Query(`
		SELECT id, username, password_hash, role, email, active, created_at, created_by
		FROM users ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var email, createdBy sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &email, &u.Active, &u.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("store: scan user row: %w", err)
		}
		u.Email = email.String
		u.CreatedBy = createdBy.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a new local account, assigning a fresh UUID if ID
// is unset.
func (db *DB) CreateUser(u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(`
		INSERT INTO users (id, username, password_hash, role, email, active, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Username, u.PasswordHash, u.Role, u.Email, u.Active, u.CreatedAt, u.CreatedBy)
	if err != nil {
		return model.User{}, fmt.Errorf("store: create user: %w", err)
	}
	return u, nil
}

// DeleteUser removes an account by id (spec §6 user:delete).
func (db *DB) DeleteUser(id string) error {
	_, err := db.conn.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	return nil
}

// SetUserActive flips a user's active flag without deleting the row.
func (db *DB) SetUserActive(id string, active bool) error {
	_, err := db.conn.Exec(`UPDATE users SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("store: set user active: %w", err)
	}
	return nil
}
