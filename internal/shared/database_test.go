package shared

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		db, err := OpenDatabase(ctx, DatabaseConfig{Path: ":memory:", MaxOpenConns: 10})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("SELECT 1 FROM track_pairings LIMIT 1"); err != nil {
			t.Errorf("migrations should have been applied: %v", err)
		}
		if got := db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("in-memory database should use one connection, got %d", got)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "spotease.db")
		db, err := OpenDatabase(ctx, DatabaseConfig{Path: path, MaxOpenConns: 4, MaxIdleConns: 2})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		db.Close()

		db, err = OpenDatabase(ctx, DatabaseConfig{Path: path})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to count migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected applied migrations to persist")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := OpenDatabase(ctx, DatabaseConfig{}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestDSN(t *testing.T) {
	tc := []struct {
		path string
		want string
	}{
		{":memory:", ":memory:"},
		{"./spotease.db", "file:./spotease.db?_txlock=immediate&_busy_timeout=5000"},
		{"file:x.db?mode=ro", "file:x.db?mode=ro"},
	}
	for _, tt := range tc {
		if got := dsn(tt.path); got != tt.want {
			t.Errorf("dsn(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
