package testsupport

import (
	"path/filepath"
	"testing"

	"vidmill/internal/config"
	"vidmill/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	path := cfg.History.Path
	if path == "" {
		path = filepath.Join(cfg.Paths.LogDir, "history.db")
	}
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
