package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	"github.com/go-redis/redis/v8"
)

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
	_ Cache = Nop{}
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemoryCache(ttl time.Duration) (*MemoryCache, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(ttl)
	c.now = clk.now
	return c, clk
}

func TestKeys(t *testing.T) {
	tc := []struct {
		got, want string
	}{
		{PlaylistsKey(models.Spotify, "u1"), "spotify:playlists:u1"},
		{PlaylistsKey(models.Netease, "u1"), "netease:playlists:u1"},
		{TracksKey(models.Spotify, "p1"), "spotify:tracks:p1"},
		{TracksKey(models.Netease, "p1"), "netease:tracks:p1"},
		{PlatformPrefix(models.Netease), "netease:"},
	}
	for _, tt := range tc {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	tracks := []models.Track{{ID: "1", Name: "Hello", Artist: "Adele", Platform: models.Spotify}}

	t.Run("Set and Get", func(t *testing.T) {
		c, _ := newTestMemoryCache(0)
		if err := c.Set(ctx, "k", tracks, 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		var got []models.Track
		ok, err := c.Get(ctx, "k", &got)
		if err != nil || !ok {
			t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
		}
		if len(got) != 1 || got[0] != tracks[0] {
			t.Errorf("unexpected cached value %+v", got)
		}

		got[0].Name = "mutated"
		var again []models.Track
		if _, err := c.Get(ctx, "k", &again); err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if again[0].Name != "Hello" {
			t.Error("cached value should not alias a previous result")
		}
	})

	t.Run("Miss", func(t *testing.T) {
		c, _ := newTestMemoryCache(0)
		var got []models.Track
		ok, err := c.Get(ctx, "missing", &got)
		if err != nil || ok {
			t.Errorf("expected miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Default TTL expiry", func(t *testing.T) {
		c, clk := newTestMemoryCache(0)
		if err := c.Set(ctx, "k", "v", 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		clk.advance(DefaultTTL)
		var got string
		if ok, _ := c.Get(ctx, "k", &got); !ok {
			t.Error("entry should still be valid at exactly the ttl")
		}

		clk.advance(time.Millisecond)
		if ok, _ := c.Get(ctx, "k", &got); ok {
			t.Error("entry should expire after the ttl")
		}
		if c.Len() != 0 {
			t.Error("expired entry should be removed on Get")
		}
	})

	t.Run("Explicit TTL", func(t *testing.T) {
		c, clk := newTestMemoryCache(time.Minute)
		if err := c.Set(ctx, "short", "v", time.Second); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := c.Set(ctx, "long", "v", 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		clk.advance(2 * time.Second)
		if removed := c.Cleanup(); removed != 1 {
			t.Errorf("expected 1 expired entry removed, got %d", removed)
		}
		if c.Len() != 1 {
			t.Errorf("expected 1 remaining entry, got %d", c.Len())
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		c, _ := newTestMemoryCache(0)
		_ = c.Set(ctx, "k", "v", 0)
		if err := c.Invalidate(ctx, "k"); err != nil {
			t.Fatalf("failed to invalidate: %v", err)
		}
		var got string
		if ok, _ := c.Get(ctx, "k", &got); ok {
			t.Error("expected miss after invalidate")
		}
	})

	t.Run("InvalidatePrefix", func(t *testing.T) {
		c, _ := newTestMemoryCache(0)
		_ = c.Set(ctx, TracksKey(models.Spotify, "a"), "v", 0)
		_ = c.Set(ctx, TracksKey(models.Spotify, "b"), "v", 0)
		_ = c.Set(ctx, TracksKey(models.Netease, "a"), "v", 0)

		if err := c.InvalidatePrefix(ctx, PlatformPrefix(models.Spotify)); err != nil {
			t.Fatalf("failed to invalidate prefix: %v", err)
		}
		if c.Len() != 1 {
			t.Errorf("expected only the netease entry to remain, got %d entries", c.Len())
		}
	})

	t.Run("Unencodable value", func(t *testing.T) {
		c, _ := newTestMemoryCache(0)
		if err := c.Set(ctx, "k", make(chan int), 0); err == nil {
			t.Error("expected error encoding a channel")
		}
	})
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Nop
	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got string
	if ok, err := c.Get(ctx, "k", &got); ok || err != nil {
		t.Errorf("Nop should always miss, got ok=%v err=%v", ok, err)
	}
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	c, err := FromConfig(ctx, shared.CacheConfig{Backend: "memory", TTLSeconds: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc, ok := c.(*MemoryCache); !ok || mc.defaultTTL != 5*time.Second {
		t.Errorf("expected memory cache with 5s ttl, got %#v", c)
	}

	if c, err := FromConfig(ctx, shared.CacheConfig{Backend: "none"}); err != nil || c != (Nop{}) {
		t.Errorf("expected Nop cache, got %#v, %v", c, err)
	}

	if _, err := FromConfig(ctx, shared.CacheConfig{Backend: "memcached"}); !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob(`spotease:tracks:a*b?[c]\`); got != `spotease:tracks:a\*b\?\[c\]\\` {
		t.Errorf("unexpected escape %q", got)
	}
}

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, "spotease:", time.Minute), mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	tracks := []models.Track{{ID: "1", Name: "晴天", Artist: "周杰伦", Platform: models.Netease}}

	t.Run("Set And Get Under Namespace", func(t *testing.T) {
		c, mr := newTestRedis(t)

		if err := c.Set(ctx, TracksKey(models.Netease, "p1"), tracks, 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if !mr.Exists("spotease:netease:tracks:p1") {
			t.Fatalf("expected namespaced key, got %v", mr.Keys())
		}
		if ttl := mr.TTL("spotease:netease:tracks:p1"); ttl != time.Minute {
			t.Errorf("expected default ttl, got %v", ttl)
		}

		var got []models.Track
		if ok, err := c.Get(ctx, TracksKey(models.Netease, "p1"), &got); !ok || err != nil {
			t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
		}
		if len(got) != 1 || got[0] != tracks[0] {
			t.Errorf("unexpected value %+v", got)
		}
	})

	t.Run("Miss And Expiry", func(t *testing.T) {
		c, mr := newTestRedis(t)
		var got []models.Track

		if ok, err := c.Get(ctx, "missing", &got); ok || err != nil {
			t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
		}

		if err := c.Set(ctx, "short", tracks, 5*time.Second); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		mr.FastForward(6 * time.Second)
		if ok, err := c.Get(ctx, "short", &got); ok || err != nil {
			t.Errorf("expected expired entry to miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		c, mr := newTestRedis(t)

		if err := c.Set(ctx, "k", tracks, 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := c.Invalidate(ctx, "k"); err != nil {
			t.Fatalf("failed to invalidate: %v", err)
		}
		if mr.Exists("spotease:k") {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("Invalidate Prefix In Batches", func(t *testing.T) {
		c, mr := newTestRedis(t)

		for i := range scanCount + 50 {
			if err := c.Set(ctx, TracksKey(models.Netease, fmt.Sprintf("p%d", i)), tracks, 0); err != nil {
				t.Fatalf("failed to set: %v", err)
			}
		}
		if err := c.Set(ctx, TracksKey(models.Spotify, "p1"), tracks, 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := mr.Set("other:netease:tracks:p1", "x"); err != nil {
			t.Fatalf("failed to seed foreign key: %v", err)
		}

		if err := c.InvalidatePrefix(ctx, PlatformPrefix(models.Netease)); err != nil {
			t.Fatalf("failed to invalidate prefix: %v", err)
		}

		keys := mr.Keys()
		if len(keys) != 2 {
			t.Fatalf("expected spotify entry and foreign key to remain, got %v", keys)
		}
		if !mr.Exists("spotease:spotify:tracks:p1") || !mr.Exists("other:netease:tracks:p1") {
			t.Errorf("unexpected remaining keys %v", keys)
		}
	})

	t.Run("Prefix With Glob Characters", func(t *testing.T) {
		c, mr := newTestRedis(t)

		if err := c.Set(ctx, "a*b", tracks, 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := c.Set(ctx, "axb", tracks, 0); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		if err := c.InvalidatePrefix(ctx, "a*"); err != nil {
			t.Fatalf("failed to invalidate prefix: %v", err)
		}
		if mr.Exists("spotease:a*b") || !mr.Exists("spotease:axb") {
			t.Errorf("expected only the literal a* prefix removed, got %v", mr.Keys())
		}
	})

	t.Run("Server Errors", func(t *testing.T) {
		c, mr := newTestRedis(t)
		mr.SetError("LOADING dataset in memory")

		var got []models.Track
		if ok, err := c.Get(ctx, "k", &got); ok || err == nil {
			t.Errorf("expected read error, got ok=%v err=%v", ok, err)
		}
		if err := c.InvalidatePrefix(ctx, ""); err == nil {
			t.Error("expected scan error")
		}
	})

	t.Run("Undecodable Value", func(t *testing.T) {
		c, mr := newTestRedis(t)
		if err := mr.Set("spotease:bad", "not json"); err != nil {
			t.Fatalf("failed to seed value: %v", err)
		}

		var got []models.Track
		if ok, err := c.Get(ctx, "bad", &got); ok || err == nil {
			t.Errorf("expected decode error, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Dial", func(t *testing.T) {
		mr := miniredis.RunT(t)

		c, err := FromConfig(ctx, shared.CacheConfig{Backend: "redis", RedisAddr: mr.Addr(), TTLSeconds: 10})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		rc, ok := c.(*RedisCache)
		if !ok || rc.defaultTTL != 10*time.Second {
			t.Fatalf("expected redis cache with 10s ttl, got %#v", c)
		}
		defer rc.Close()

		addr := mr.Addr()
		mr.Close()
		if _, err := DialRedis(ctx, addr, 0, 0); err == nil {
			t.Error("expected dial error against a stopped server")
		}
	})
}
