// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package controller

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/princerobleodom/blogg/internal/admin"
	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/session"
	"github.com/princerobleodom/blogg/internal/stub"
	"github.com/princerobleodom/blogg/internal/syncer"
	"github.com/princerobleodom/blogg/internal/token"
)

type fixture struct {
	ctrl   *Controller
	sess   *session.Store
	sync   *syncer.Synchronizer
	loader *admin.Loader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := stub.New()
	backend.SeedDemo()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, nil)
	sess := session.NewStore(client, token.NewStore(filepath.Join(t.TempDir(), "token")))
	s := syncer.New(client, nil, nil)
	loader := admin.NewLoader(client, sess)
	return &fixture{
		ctrl:   New(sess, s, loader),
		sess:   sess,
		sync:   s,
		loader: loader,
	}
}

func (f *fixture) loginAdmin(t *testing.T) {
	t.Helper()
	if _, err := f.sess.Login(context.Background(), api.Credentials{Email: stub.AdminEmail, Password: stub.AdminPassword}); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestInitialViewIsHome(t *testing.T) {
	f := newFixture(t)
	if got := f.ctrl.Current(); got != ViewHome {
		t.Errorf("initial view: got %q", got)
	}
}

func TestNavigate_PublicViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, v := range []View{ViewLogin, ViewRegister, ViewHome} {
		if err := f.ctrl.Navigate(ctx, v); err != nil {
			t.Fatalf("Navigate(%q): %v", v, err)
		}
		if got := f.ctrl.Current(); got != v {
			t.Errorf("Current after Navigate(%q): got %q", v, got)
		}
	}
}

func TestNavigate_AdminViewsGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, v := range []View{ViewCreatePost, ViewAdmin, ViewAdminUsers, ViewAdminLogins} {
		if err := f.ctrl.Navigate(ctx, v); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Navigate(%q) unauthenticated: got %v, want ErrUnauthorized", v, err)
		}
		if got := f.ctrl.Current(); got != ViewHome {
			t.Errorf("view moved to %q on rejected transition", got)
		}
	}

	// A plain user session does not help.
	if _, err := f.sess.Register(ctx, api.Profile{Name: "Ada", Email: "ada@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.ctrl.Navigate(ctx, ViewAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Navigate(admin) as plain user: got %v", err)
	}
}

func TestNavigate_AdminEntryLoadsData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAdmin(t)

	if err := f.ctrl.Navigate(ctx, ViewAdmin); err != nil {
		t.Fatalf("Navigate(admin): %v", err)
	}
	if f.loader.Snapshot() == nil {
		t.Error("dashboard not loaded on entry")
	}

	if err := f.ctrl.Navigate(ctx, ViewAdminUsers); err != nil {
		t.Fatalf("Navigate(admin-users): %v", err)
	}
	if len(f.loader.UserList()) == 0 {
		t.Error("user list not loaded on entry")
	}

	if err := f.ctrl.Navigate(ctx, ViewAdminLogins); err != nil {
		t.Fatalf("Navigate(admin-logins): %v", err)
	}
	if len(f.loader.AttemptList()) == 0 {
		t.Error("attempt log not loaded on entry")
	}
}

func TestNavigate_PostViewNeedsSelection(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.Navigate(context.Background(), ViewPost); !errors.Is(err, ErrNoPostSelected) {
		t.Fatalf("Navigate(post): got %v, want ErrNoPostSelected", err)
	}
}

func TestNavigate_UnknownView(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.Navigate(context.Background(), View("settings")); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("Navigate(settings): got %v, want ErrUnknownView", err)
	}
}

func TestOpenPost_TransitionsOnlyOnSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sync.LoadPosts(ctx)
	id := f.sync.Posts()[0].ID

	if err := f.ctrl.OpenPost(ctx, id); err != nil {
		t.Fatalf("OpenPost: %v", err)
	}
	if got := f.ctrl.Current(); got != ViewPost {
		t.Errorf("view after OpenPost: got %q", got)
	}
	if got := f.ctrl.SelectedPost(); got != id {
		t.Errorf("SelectedPost: got %q, want %q", got, id)
	}

	// A failing fetch leaves the current view in place.
	if err := f.ctrl.OpenPost(ctx, "missing"); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("OpenPost(missing): got %v, want ErrNotFound", err)
	}
	if got := f.ctrl.Current(); got != ViewPost {
		t.Errorf("view after failed open: got %q", got)
	}
	if got := f.ctrl.SelectedPost(); got != id {
		t.Errorf("selection after failed open: got %q", got)
	}

	if err := f.ctrl.OpenPost(ctx, ""); !errors.Is(err, ErrNoPostSelected) {
		t.Errorf("OpenPost(\"\"): got %v", err)
	}
}

func TestNavigateHome_ClosesDetailAndSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sync.LoadPosts(ctx)
	if err := f.ctrl.OpenPost(ctx, f.sync.Posts()[0].ID); err != nil {
		t.Fatalf("OpenPost: %v", err)
	}

	if err := f.ctrl.Navigate(ctx, ViewHome); err != nil {
		t.Fatalf("Navigate(home): %v", err)
	}
	if f.sync.Detail() != nil {
		t.Error("detail still open after leaving the post view")
	}
	if got := f.ctrl.SelectedPost(); got != "" {
		t.Errorf("selection survived leaving the post view: %q", got)
	}
}

func TestLogout_LandsHomeFromAnywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAdmin(t)

	if err := f.ctrl.Navigate(ctx, ViewAdminUsers); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	f.ctrl.Logout()

	if got := f.ctrl.Current(); got != ViewHome {
		t.Errorf("view after logout: got %q", got)
	}
	if f.sess.Snapshot().Authenticated() {
		t.Error("session survived logout")
	}
}

func TestSessionLoss_ForcesOutOfAdminViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAdmin(t)

	if err := f.ctrl.Navigate(ctx, ViewAdmin); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	// The session store notifies the controller, not Logout on the
	// controller itself.
	f.sess.Logout()

	if got := f.ctrl.Current(); got != ViewHome {
		t.Errorf("view after session loss: got %q, want home", got)
	}
}

func TestSubscribe_NotifiedOnChangeOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var seen []View
	f.ctrl.Subscribe(func(v View) { seen = append(seen, v) })

	if err := f.ctrl.Navigate(ctx, ViewLogin); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	// Re-entering the same view does not notify.
	if err := f.ctrl.Navigate(ctx, ViewLogin); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	if len(seen) != 1 || seen[0] != ViewLogin {
		t.Errorf("notifications: got %v, want [login]", seen)
	}
}
