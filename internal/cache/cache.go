// Package cache provides short-lived caches for catalog responses.
//
// Values are stored as JSON so that [MemoryCache] and [RedisCache] behave the same way:
// a hit decodes into a fresh value and never aliases what was stored.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
)

// DefaultTTL is used when Set is called with a non-positive ttl.
const DefaultTTL = 30 * time.Second

// Cache stores JSON-serializable values with an expiry.
type Cache interface {
	// Get decodes the value stored at key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// PlaylistsKey is the key for a user's playlist listing on platform.
func PlaylistsKey(platform models.Platform, userID string) string {
	return fmt.Sprintf("%s:playlists:%s", strings.ToLower(string(platform)), userID)
}

// TracksKey is the key for the track listing of a playlist on platform.
func TracksKey(platform models.Platform, playlistID string) string {
	return fmt.Sprintf("%s:tracks:%s", strings.ToLower(string(platform)), playlistID)
}

// PlatformPrefix covers every key belonging to platform.
func PlatformPrefix(platform models.Platform) string {
	return strings.ToLower(string(platform)) + ":"
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process [Cache] guarded by a mutex.
//
// Expired entries are dropped lazily on Get and in bulk by Cleanup.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// NewMemoryCache creates a MemoryCache. A non-positive defaultTTL means [DefaultTTL].
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &MemoryCache{entries: make(map[string]entry), defaultTTL: defaultTTL, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().After(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Cleanup removes every expired entry and returns how many were removed.
func (c *MemoryCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet cleaned up.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Nop is a [Cache] that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Invalidate(context.Context, string) error { return nil }
func (Nop) InvalidatePrefix(context.Context, string) error { return nil }

// FromConfig builds the cache selected by cfg.Backend.
func FromConfig(ctx context.Context, cfg shared.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.TTL()), nil
	case "redis":
		rc, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.TTL())
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
