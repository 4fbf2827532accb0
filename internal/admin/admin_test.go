package admin

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/session"
	"github.com/princerobleodom/blogg/internal/stub"
	"github.com/princerobleodom/blogg/internal/token"
)

// newFixture wires a loader against a live stub server and returns the
// session store so tests control who is logged in.
func newFixture(t *testing.T) (*Loader, *session.Store, *api.Client) {
	t.Helper()
	srv := httptest.NewServer(stub.New())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, nil)
	sess := session.NewStore(client, token.NewStore(filepath.Join(t.TempDir(), "token")))
	return NewLoader(client, sess), sess, client
}

func loginAdmin(t *testing.T, sess *session.Store) {
	t.Helper()
	if _, err := sess.Login(context.Background(), api.Credentials{Email: stub.AdminEmail, Password: stub.AdminPassword}); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestLoads_RequireAdminSession(t *testing.T) {
	l, sess, _ := newFixture(t)
	ctx := context.Background()

	// No session at all.
	if _, err := l.Dashboard(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("Dashboard without session: got %v", err)
	}

	// A plain user session is gated the same way, before any request.
	if _, err := sess.Register(ctx, api.Profile{Name: "Ada", Email: "ada@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := l.Users(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("Users as plain user: got %v", err)
	}
	if _, err := l.LoginAttempts(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("LoginAttempts as plain user: got %v", err)
	}

	// Gated loads leave no data behind.
	if l.Snapshot() != nil || l.UserList() != nil || l.AttemptList() != nil {
		t.Error("gated loads left data in the loader")
	}
}

func TestLoads_AsAdmin(t *testing.T) {
	l, sess, _ := newFixture(t)
	ctx := context.Background()
	loginAdmin(t, sess)

	snap, err := l.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if snap.Stats.TotalUsers != 1 {
		t.Errorf("TotalUsers: got %d, want 1", snap.Stats.TotalUsers)
	}
	if l.Snapshot() != snap {
		t.Error("Snapshot accessor does not return the loaded dashboard")
	}

	users, err := l.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 || !users[0].IsAdmin {
		t.Errorf("users: got %+v", users)
	}

	attempts, err := l.LoginAttempts(ctx)
	if err != nil {
		t.Fatalf("LoginAttempts: %v", err)
	}
	// At least the admin login itself is in the audit log.
	if len(attempts) == 0 {
		t.Error("attempt log is empty")
	}
	if got := l.AttemptList(); len(got) != len(attempts) {
		t.Errorf("AttemptList: got %d entries, want %d", len(got), len(attempts))
	}
}

func TestLogout_InvalidatesSubsequentLoads(t *testing.T) {
	l, sess, _ := newFixture(t)
	ctx := context.Background()
	loginAdmin(t, sess)

	if _, err := l.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	sess.Logout()

	if _, err := l.Dashboard(ctx); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("Dashboard after logout: got %v", err)
	}
	if l.Snapshot() != nil {
		t.Error("stale dashboard survived a rejected load")
	}
}
