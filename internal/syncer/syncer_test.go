// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/stub"
)

// newStubFixture wires a synchronizer (no cache, no metrics) to a live stub
// server seeded with demo posts, and returns an admin token for mutations.
func newStubFixture(t *testing.T) (*Synchronizer, *api.Client, string) {
	t.Helper()
	backend := stub.New()
	backend.SeedDemo()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, nil)
	resp, err := client.Login(context.Background(), api.Credentials{Email: stub.AdminEmail, Password: stub.AdminPassword})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return New(client, nil, nil), client, resp.AccessToken
}

func TestLoadPosts_InstallsSnapshot(t *testing.T) {
	s, _, _ := newStubFixture(t)
	s.LoadPosts(context.Background())

	posts := s.Posts()
	if len(posts) != 3 {
		t.Fatalf("posts: got %d, want 3 seeded", len(posts))
	}
	// Newest first.
	for i := 1; i < len(posts); i++ {
		if posts[i].CreatedAt.After(posts[i-1].CreatedAt) {
			t.Errorf("posts out of order at %d", i)
		}
	}
}

func TestSetFilter_RefetchesAndIsIdempotent(t *testing.T) {
	s, _, _ := newStubFixture(t)
	ctx := context.Background()

	s.SetFilter(ctx, api.Filter{Category: "Finance"})
	posts := s.Posts()
	if len(posts) != 1 || posts[0].Category != "Finance" {
		t.Fatalf("filtered posts: got %+v", posts)
	}
	if got := s.Filter(); got.Category != "Finance" {
		t.Errorf("Filter: got %+v", got)
	}

	// Same filter again must not change anything.
	s.SetFilter(ctx, api.Filter{Category: "Finance"})
	if got := s.Posts(); len(got) != 1 {
		t.Errorf("posts after no-op filter: got %d", len(got))
	}

	// Back to empty re-fetches the full list.
	s.SetFilter(ctx, api.Filter{})
	if got := s.Posts(); len(got) != 3 {
		t.Errorf("posts after clearing filter: got %d, want 3", len(got))
	}
}

// TestStaleResponseDiscarded pins the race that motivates the sequence
// numbers: a slow response for an old filter arriving after a newer fetch
// has completed must not overwrite the newer list.
func TestStaleResponseDiscarded(t *testing.T) {
	slowArrived := make(chan struct{})
	releaseSlow := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		if search == "slow" {
			close(slowArrived)
			<-releaseSlow
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"posts": []api.Post{{ID: search, Title: search}},
		})
	}))
	defer srv.Close()

	s := New(api.New(srv.URL, nil), nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SetFilter(ctx, api.Filter{Search: "slow"})
	}()

	select {
	case <-slowArrived:
	case <-time.After(5 * time.Second):
		t.Fatal("slow request never reached the server")
	}

	// Newer fetch starts and completes while the old one is in flight.
	s.SetFilter(ctx, api.Filter{Search: "fast"})
	if got := s.Posts(); len(got) != 1 || got[0].ID != "fast" {
		t.Fatalf("posts after fast fetch: got %+v", got)
	}

	close(releaseSlow)
	wg.Wait()

	// The stale response must have been dropped on arrival.
	if got := s.Posts(); len(got) != 1 || got[0].ID != "fast" {
		t.Errorf("stale response overwrote newer list: got %+v", got)
	}
}

func TestListFailure_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(api.New(srv.URL, nil), nil, nil)
	s.LoadPosts(context.Background())

	if got := s.Posts(); len(got) != 0 {
		t.Errorf("posts after failed fetch: got %+v, want empty", got)
	}
}

func TestLoadCategories(t *testing.T) {
	s, _, _ := newStubFixture(t)

	if err := s.LoadCategories(context.Background()); err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	cats := s.Categories()
	if len(cats) != 3 {
		t.Fatalf("categories: got %v", cats)
	}
}

func TestOpenCloseRefreshDetail(t *testing.T) {
	s, client, admin := newStubFixture(t)
	ctx := context.Background()

	s.LoadPosts(ctx)
	id := s.Posts()[0].ID

	detail, err := s.OpenPost(ctx, id)
	if err != nil {
		t.Fatalf("OpenPost: %v", err)
	}
	if detail.ID != id || s.Detail() == nil {
		t.Fatalf("detail not installed")
	}
	if len(detail.Comments) != 0 {
		t.Fatalf("fresh post has comments: %+v", detail.Comments)
	}

	// A comment lands elsewhere; refresh picks it up.
	if _, err := client.Comment(ctx, admin, id, "hello"); err != nil {
		t.Fatalf("Comment: %v", err)
	}
	s.RefreshDetail(ctx, id)
	if got := s.Detail(); len(got.Comments) != 1 || got.Comments[0].Content != "hello" {
		t.Errorf("detail after refresh: %+v", got.Comments)
	}

	// Refreshing a post that is not open changes nothing.
	s.RefreshDetail(ctx, "some-other-id")
	if got := s.Detail(); got == nil || got.ID != id {
		t.Errorf("unrelated refresh disturbed the open detail")
	}

	// The open post vanishing server-side closes the detail.
	if err := client.DeletePost(ctx, admin, id); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	s.RefreshDetail(ctx, id)
	if s.Detail() != nil {
		t.Error("detail survived deletion of the open post")
	}

	s.CloseDetail()
	if s.Detail() != nil {
		t.Error("detail present after close")
	}
}

func TestOpenPost_UnknownID(t *testing.T) {
	s, _, _ := newStubFixture(t)

	if _, err := s.OpenPost(context.Background(), "missing"); err == nil {
		t.Fatal("OpenPost with unknown id succeeded")
	}
	if s.Detail() != nil {
		t.Error("failed open installed a detail")
	}
}

func TestSubscribe_FiresOnCommit(t *testing.T) {
	s, _, _ := newStubFixture(t)

	var mu sync.Mutex
	fired := 0
	s.Subscribe(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	s.LoadPosts(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if fired == 0 {
		t.Error("subscriber never notified")
	}
}
