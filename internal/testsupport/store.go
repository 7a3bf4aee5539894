package testsupport

import (
	"testing"

	"marquee/internal/config"
	"marquee/internal/subscribers"
)

// MustOpenRegistry opens a subscribers.Store for tests and registers cleanup.
func MustOpenRegistry(t testing.TB, cfg *config.Config) *subscribers.Store {
	t.Helper()

	store, err := subscribers.Open(cfg.Subscribers.DBPath)
	if err != nil {
		t.Fatalf("open subscriber registry: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close subscriber registry: %v", err)
		}
	})
	return store
}
