// Package authn implements authentication, opaque session management, and
// RBAC (spec §3/§6), grounded in the teacher pack's
// omar251990/Protei_Monitoring auth.Service shape with its JWT swapped for
// opaque random session ids per DESIGN.md's grounding entry.
package authn

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

// SessionTTL is the lifetime of a session from creation (spec §3).
const SessionTTL = 24 * time.Hour

// hardcodedSuperAdminUsername/ID is the bypass account named in
// spec §3 ("a hardcoded super_admin credential bypasses the user
// table"). It never appears in the users table and cannot be disabled
// through the API.
const (
	hardcodedSuperAdminUsername = "superadmin"
	hardcodedSuperAdminID       = "superadmin"
)

// UserStore is the persistence dependency for looking up local accounts.
// Satisfied by internal/store.
type UserStore interface {
	UserByUsername(username string) (model.User, bool, error)
}

// SessionStore is the persistence dependency for the durable `sessions`
// table (spec §6). Satisfied by internal/store.
type SessionStore interface {
	PutSession(model.Session) error
	SessionByID(id string) (model.Session, bool, error)
	DeleteSession(id string) error
}

// Service is the authn component: login, session validation, and
// permission checks.
type Service struct {
	users    UserStore
	sessions SessionStore

	superAdminPasswordHash []byte
}

// New builds a Service. superAdminPassword is the plaintext bypass
// password (from config); it is hashed once at startup and never stored.
func New(users UserStore, sessions SessionStore, superAdminPassword string) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(superAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash super_admin password: %w", err)
	}
	return &Service{
		users:                  users,
		sessions:               sessions,
		superAdminPasswordHash: hash,
	}, nil
}

// Login verifies username/password and, on success, creates a session.
func (s *Service) Login(username, password string) (model.User, model.Session, error) {
	if username == hardcodedSuperAdminUsername {
		if bcrypt.CompareHashAndPassword(s.superAdminPasswordHash, []byte(password)) != nil {
			return model.User{}, model.Session{}, NewAuthError("invalid credentials", 401)
		}
		user := model.User{ID: hardcodedSuperAdminID, Username: hardcodedSuperAdminUsername, Role: model.RoleSuperAdmin, Active: true}
		session, err := s.createSession(user)
		return user, session, err
	}

	user, ok, err := s.users.UserByUsername(username)
	if err != nil {
		return model.User{}, model.Session{}, err
	}
	if !ok || !user.Active {
		return model.User{}, model.Session{}, NewAuthError("invalid credentials", 401)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, model.Session{}, NewAuthError("invalid credentials", 401)
	}
	session, err := s.createSession(user)
	return user, session, err
}

func (s *Service) createSession(user model.User) (model.Session, error) {
	session := model.Session{
		ID:        newSessionID(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(SessionTTL),
	}
	if err := s.sessions.PutSession(session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// Validate resolves an x-session-id header value into a live Session,
// evicting it if expired.
func (s *Service) Validate(sessionID string) (model.Session, error) {
	session, ok, err := s.sessions.SessionByID(sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if !ok {
		return model.Session{}, NewAuthError("session not found", 401)
	}
	if session.Expired(time.Now()) {
		_ = s.sessions.DeleteSession(sessionID)
		return model.Session{}, NewAuthError("session expired", 401)
	}
	return session, nil
}

// Logout deletes a session, if present. Always succeeds.
func (s *Service) Logout(sessionID string) {
	_ = s.sessions.DeleteSession(sessionID)
}

// adminOnlyActions is the set of actions restricted to admins (spec §6
// permissions table). user:* / olt:configure are gated to the two admin
// tiers; everything else is open to all three roles.
var adminOnlyActions = map[string]bool{
	"user:create": true, "user:delete": true, "user:list": true,
	"olt:configure": true,
}

// Authorize returns nil if role may perform action, else *AuthError(403).
func Authorize(role model.Role, action string) error {
	if !adminOnlyActions[action] {
		return nil // olt:view, onu:*, profiles:view, vlans:view — all roles
	}
	if role == model.RoleSuperAdmin || role == model.RoleAdmin {
		return nil
	}
	return NewAuthError(fmt.Sprintf("role %s may not perform %s", role, action), 403)
}

// CanCreateUser enforces spec §3's creation invariant: super_admin may
// create anything; admin may create `user` only; `user` creates nothing.
func CanCreateUser(actor model.Role, target model.Role) bool {
	switch actor {
	case model.RoleSuperAdmin:
		return true
	case model.RoleAdmin:
		return target == model.RoleUser
	default:
		return false
	}
}

func newSessionID() string {
	buf := make([]byte, 16) // 128 bits, spec §3
	if _, err := rand.Read(buf); err != nil {
		panic("authn: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// HashPassword hashes a plaintext password for storage in the users
// table.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
