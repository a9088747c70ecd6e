package authn

import (
	"testing"

	"github.com/nanoncore/ma5801-olt-manager/internal/model"
)

type fakeUserStore struct {
	users map[string]model.User
}

func (f *fakeUserStore) UserByUsername(username string) (model.User, bool, error) {
	u, ok := f.users[username]
	return u, ok, nil
}

type fakeSessionStore struct {
	sessions map[string]model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]model.Session)}
}

func (f *fakeSessionStore) PutSession(s model.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) SessionByID(id string) (model.Session, bool, error) {
	s, ok := f.sessions[id]
	return s, ok, nil
}

func (f *fakeSessionStore) DeleteSession(id string) error {
	delete(f.sessions, id)
	return nil
}

func TestLoginSuperAdminBypass(t *testing.T) {
	svc, err := New(&fakeUserStore{users: map[string]model.User{}}, newFakeSessionStore(), "correct-horse")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	user, session, err := svc.Login("superadmin", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Role != model.RoleSuperAdmin {
		t.Errorf("Role = %v, want super_admin", user.Role)
	}
	if session.ID == "" {
		t.Error("expected a non-empty session id")
	}
}

func TestLoginSuperAdminWrongPassword(t *testing.T) {
	svc, _ := New(&fakeUserStore{}, newFakeSessionStore(), "correct-horse")
	if _, _, err := svc.Login("superadmin", "wrong"); !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestLoginRegularUser(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	store := &fakeUserStore{users: map[string]model.User{
		"alice": {ID: "1", Username: "alice", PasswordHash: hash, Role: model.RoleUser, Active: true},
	}}
	svc, _ := New(store, newFakeSessionStore(), "correct-horse")
	user, session, err := svc.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Username != "alice" || session.Role != model.RoleUser {
		t.Errorf("unexpected login result: %+v %+v", user, session)
	}

	if _, err := svc.Validate(session.ID); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	svc.Logout(session.ID)
	if _, err := svc.Validate(session.ID); !IsAuthError(err) {
		t.Errorf("expected AuthError after logout, got %v", err)
	}
}

func TestLoginInactiveUserRejected(t *testing.T) {
	hash, _ := HashPassword("s3cret")
	store := &fakeUserStore{users: map[string]model.User{
		"bob": {ID: "2", Username: "bob", PasswordHash: hash, Role: model.RoleUser, Active: false},
	}}
	svc, _ := New(store, newFakeSessionStore(), "correct-horse")
	if _, _, err := svc.Login("bob", "s3cret"); !IsAuthError(err) {
		t.Fatalf("expected AuthError for inactive user, got %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	if err := Authorize(model.RoleUser, "olt:configure"); !IsAuthError(err) {
		t.Error("expected user role to be denied olt:configure")
	}
	if err := Authorize(model.RoleAdmin, "olt:configure"); err != nil {
		t.Errorf("expected admin role to be allowed olt:configure, got %v", err)
	}
	if err := Authorize(model.RoleUser, "onu:bind"); err != nil {
		t.Errorf("expected user role to be allowed onu:bind, got %v", err)
	}
}

func TestCanCreateUser(t *testing.T) {
	if !CanCreateUser(model.RoleSuperAdmin, model.RoleAdmin) {
		t.Error("super_admin should be able to create any role")
	}
	if !CanCreateUser(model.RoleAdmin, model.RoleUser) {
		t.Error("admin should be able to create a user")
	}
	if CanCreateUser(model.RoleAdmin, model.RoleAdmin) {
		t.Error("admin should not be able to create another admin")
	}
	if CanCreateUser(model.RoleUser, model.RoleUser) {
		t.Error("user should not be able to create anyone")
	}
}
