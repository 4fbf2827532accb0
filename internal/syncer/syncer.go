// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package syncer keeps the client's read-side state (post list, post
// detail, category set) synchronized with the server. State is replaced
// wholesale from server responses, never computed locally.
//
// Filter changes can race slow responses, so every list fetch carries a
// monotonically increasing sequence number and a response only commits if
// no newer fetch has started since. Superseded responses are discarded on
// arrival; there is no in-flight cancellation.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/princerobleodom/blogg/internal/api"
	"github.com/princerobleodom/blogg/internal/cache"
	"github.com/princerobleodom/blogg/internal/metrics"
)

// Synchronizer is the single writer of the read-side snapshots. All
// accessors return snapshot values safe to use without further locking.
type Synchronizer struct {
	client  *api.Client
	cache   *cache.Cache
	metrics *metrics.Metrics

	seq atomic.Uint64

	mu         sync.Mutex
	filter     api.Filter
	posts      []api.Post
	categories []string
	detail     *api.Post
	subs       []func()
}

// New creates a synchronizer. c may be nil to disable the snapshot cache;
// m may be nil to disable instrumentation.
func New(client *api.Client, c *cache.Cache, m *metrics.Metrics) *Synchronizer {
	return &Synchronizer{client: client, cache: c, metrics: m}
}

// Subscribe registers a callback invoked after every committed state
// change. Callbacks run outside the synchronizer's lock.
func (s *Synchronizer) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Posts returns the current post-list snapshot.
func (s *Synchronizer) Posts() []api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

// Categories returns the category set loaded at startup.
func (s *Synchronizer) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories
}

// Detail returns the currently open post with comments, or nil.
func (s *Synchronizer) Detail() *api.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

// Filter returns the active filter.
func (s *Synchronizer) Filter() api.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter applies a new search/category constraint and re-fetches the
// list. A no-op when the filter is unchanged. Safe to call concurrently:
// whichever call carries the newest filter wins the final state.
func (s *Synchronizer) SetFilter(ctx context.Context, f api.Filter) {
	s.mu.Lock()
	if s.filter == f {
		s.mu.Unlock()
		return
	}
	s.filter = f
	// Sequence allocation happens under the same lock as the filter write
	// so "newest sequence" and "newest filter" cannot diverge.
	seq := s.seq.Add(1)
	s.mu.Unlock()

	s.refreshList(ctx, f, seq, true)
}

// LoadPosts performs the startup list fetch with the current filter.
func (s *Synchronizer) LoadPosts(ctx context.Context) {
	f, seq := s.snapshotFilter()
	s.refreshList(ctx, f, seq, true)
}

// Invalidate drops any cached list snapshots and re-fetches from the
// server. Called by the write side after a successful mutation.
func (s *Synchronizer) Invalidate(ctx context.Context) {
	s.cache.InvalidatePosts(ctx)
	f, seq := s.snapshotFilter()
	s.refreshList(ctx, f, seq, false)
}

// snapshotFilter reads the active filter and allocates the next sequence
// number atomically with respect to SetFilter.
func (s *Synchronizer) snapshotFilter() (api.Filter, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter, s.seq.Add(1)
}

// refreshList fetches the list for the given filter under its sequence
// number. useCache skips the network on a warm snapshot; invalidation paths
// pass false to force an authoritative read.
func (s *Synchronizer) refreshList(ctx context.Context, f api.Filter, seq uint64, useCache bool) {
	if useCache {
		if posts, ok := s.cache.GetPosts(ctx, f); ok {
			s.commitPosts(seq, posts)
			return
		}
	}

	posts, err := s.client.ListPosts(ctx, f)
	if err != nil {
		// Degraded read path: an empty list is indistinguishable from "no
		// results" in the view, which is the accepted behavior. Diagnose in
		// the log and keep going.
		slog.Warn("post list fetch failed",
			"search", f.Search,
			"category", f.Category,
			"error", err,
		)
		s.commitPosts(seq, nil)
		return
	}

	if s.commitPosts(seq, posts) {
		s.cache.SetPosts(ctx, f, posts)
	}
}

// commitPosts installs a list snapshot unless a newer fetch has started.
// Returns whether the snapshot was accepted.
func (s *Synchronizer) commitPosts(seq uint64, posts []api.Post) bool {
	s.mu.Lock()
	if seq != s.seq.Load() {
		s.mu.Unlock()
		s.metrics.StaleDiscard()
		slog.Debug("stale post list discarded", "seq", seq)
		return false
	}
	s.posts = posts
	s.mu.Unlock()

	s.notify()
	return true
}

// LoadCategories fetches the distinct category set. Called once at startup;
// no write path invalidates it, so categories created later appear only on
// the next run. Known limitation, not a defect.
func (s *Synchronizer) LoadCategories(ctx context.Context) error {
	if cats, ok := s.cache.GetCategories(ctx); ok {
		s.setCategories(cats)
		return nil
	}

	cats, err := s.client.Categories(ctx)
	if err != nil {
		slog.Warn("category fetch failed", "error", err)
		return err
	}
	s.setCategories(cats)
	s.cache.SetCategories(ctx, cats)
	return nil
}

func (s *Synchronizer) setCategories(cats []string) {
	s.mu.Lock()
	s.categories = cats
	s.mu.Unlock()
	s.notify()
}

// OpenPost fetches the full detail projection for a post and makes it the
// open detail. Returns api.ErrNotFound (wrapped) for unknown ids.
func (s *Synchronizer) OpenPost(ctx context.Context, id string) (*api.Post, error) {
	post, err := s.client.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.detail = post
	s.mu.Unlock()
	s.notify()
	return post, nil
}

// CloseDetail forgets the open post when the view leaves it.
func (s *Synchronizer) CloseDetail() {
	s.mu.Lock()
	s.detail = nil
	s.mu.Unlock()
	s.notify()
}

// RefreshDetail re-reads the open post after a mutation touched it. A no-op
// when the mutated post is not the one currently open. The refetch happens
// strictly after the mutation succeeded — the caller guarantees ordering.
func (s *Synchronizer) RefreshDetail(ctx context.Context, id string) {
	s.mu.Lock()
	open := s.detail != nil && s.detail.ID == id
	s.mu.Unlock()
	if !open {
		return
	}

	post, err := s.client.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// The post disappeared underneath us (deleted elsewhere).
			s.CloseDetail()
			return
		}
		slog.Warn("post detail refresh failed", "id", id, "error", err)
		return
	}

	s.mu.Lock()
	// Re-check: the user may have navigated away during the fetch.
	if s.detail == nil || s.detail.ID != id {
		s.mu.Unlock()
		return
	}
	s.detail = post
	s.mu.Unlock()
	s.notify()
}

func (s *Synchronizer) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
