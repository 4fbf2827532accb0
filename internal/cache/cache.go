// Copyright (c) 2026 Prince Robleodom <prince@robleodom.dev>
// All rights reserved. See LICENSE for details.

// Package cache provides an optional Valkey (Redis-compatible) snapshot
// cache for read paths. Post-list snapshots are keyed by their filter so a
// repeated query within the TTL skips the network; mutation paths
// invalidate the whole list prefix. A nil *Cache disables caching entirely
// and every method degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/princerobleodom/blogg/internal/api"
)

const (
	// postsKeyPrefix namespaces post-list snapshots in Valkey.
	postsKeyPrefix = "blogg:posts:"

	// categoriesKey holds the category set snapshot.
	categoriesKey = "blogg:categories"

	// DefaultTTL is how long a snapshot stays fresh. Mutations invalidate
	// earlier; the TTL only bounds staleness across client instances.
	DefaultTTL = 2 * time.Minute
)

// Connect creates a Valkey client and verifies the connection with a ping.
func Connect(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}

// Cache manages API response snapshots in Valkey.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a snapshot cache backed by the given Valkey client.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// GetPosts retrieves the cached post list for a filter. Returns false on miss.
func (c *Cache) GetPosts(ctx context.Context, filter api.Filter) ([]api.Post, bool) {
	if c == nil {
		return nil, false
	}
	key := postsKey(filter)
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("posts cache get error", "key", key, "error", err)
		return nil, false
	}

	var posts []api.Post
	if err := json.Unmarshal(val, &posts); err != nil {
		slog.Warn("posts cache decode error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("posts cache hit", "key", key)
	return posts, true
}

// SetPosts stores a post-list snapshot for a filter with the configured TTL.
func (c *Cache) SetPosts(ctx context.Context, filter api.Filter, posts []api.Post) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(posts)
	if err != nil {
		slog.Warn("posts cache encode error", "error", err)
		return
	}
	if err := c.client.Set(ctx, postsKey(filter), payload, c.ttl).Err(); err != nil {
		slog.Warn("posts cache set error", "error", err)
	}
}

// InvalidatePosts removes every cached post-list snapshot by scanning the
// prefix. Called after any mutation that could change the list.
func (c *Cache) InvalidatePosts(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, postsKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("posts cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("posts cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("posts cache invalidated", "deleted", deleted)
	}
}

// GetCategories retrieves the cached category set. Returns false on miss.
func (c *Cache) GetCategories(ctx context.Context) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("categories cache get error", "error", err)
		return nil, false
	}

	var categories []string
	if err := json.Unmarshal(val, &categories); err != nil {
		slog.Warn("categories cache decode error", "error", err)
		return nil, false
	}
	return categories, true
}

// SetCategories stores the category set snapshot.
func (c *Cache) SetCategories(ctx context.Context, categories []string) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(categories)
	if err != nil {
		slog.Warn("categories cache encode error", "error", err)
		return
	}
	if err := c.client.Set(ctx, categoriesKey, payload, c.ttl).Err(); err != nil {
		slog.Warn("categories cache set error", "error", err)
	}
}

// postsKey builds the snapshot key for a filter. url.Values encoding keeps
// the key stable regardless of field order.
func postsKey(filter api.Filter) string {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	return postsKeyPrefix + q.Encode()
}
