package testsupport

import (
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/ledger"
	"reelsmith/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenLedger binds the config's ledger file for tests.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Ledger {
	t.Helper()

	l, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	return l
}
