// Package dbtest opens throwaway SQLite stores for package tests.
package dbtest

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/orgball2608/story-explorer/internal/db"
	"github.com/orgball2608/story-explorer/pkg/logger"
)

func Logger() logger.Logger {
	return logger.New(logger.Opts{Env: "test", Writer: io.Discard})
}

// OpenLocal returns a migrated local store in t's temp dir.
func OpenLocal(t testing.TB) *db.LocalDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	local, err := db.OpenLocal(context.Background(), db.Options{Path: path}, Logger())
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })
	return local
}

// OpenCache returns a migrated response store in t's temp dir.
func OpenCache(t testing.TB) *db.CacheDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.db")
	cache, err := db.OpenCache(context.Background(), path)
	if err != nil {
		t.Fatalf("open response cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}
