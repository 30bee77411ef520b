package ledger_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"reelsmith/internal/ledger"
	"reelsmith/internal/services"
)

func TestLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "done.txt")
	l, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	set, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("expected empty set, got %v", set.IDs())
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected ledger file created: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty ledger, size=%d", info.Size())
	}
}

func TestRecordAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.txt")
	l, _ := ledger.Open(path)

	for _, id := range []string{"f1", "f2", "f1"} {
		if err := l.Record(id); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if string(raw) != "f1\nf2\nf1\n" {
		t.Fatalf("unexpected ledger contents %q", raw)
	}

	set, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(set.IDs(), []string{"f1", "f2"}) {
		t.Fatalf("unexpected ids %v", set.IDs())
	}
	if !set.Contains("f2") || set.Contains("f3") {
		t.Fatalf("unexpected membership: %v", set.IDs())
	}
}

func TestLoadIgnoresBlankLinesAndWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.txt")
	if err := os.WriteFile(path, []byte("\n  a \n\nb\r\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l, _ := ledger.Open(path)
	set, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(set.IDs(), []string{"a", "b"}) {
		t.Fatalf("unexpected ids %v", set.IDs())
	}
}

func TestRecordRejectsInvalidIdentifiers(t *testing.T) {
	l, _ := ledger.Open(filepath.Join(t.TempDir(), "done.txt"))
	for _, id := range []string{"", "  ", "a\nb", "f1 ", "\tf1"} {
		if err := l.Record(id); !errors.Is(err, services.ErrLedgerStorage) {
			t.Fatalf("Record(%q) = %v, want ledger storage error", id, err)
		}
	}
}

func TestValidateIDRequiresRoundTrip(t *testing.T) {
	for _, id := range []string{"f1", "a b", "2024-01-01_reel"} {
		if err := ledger.ValidateID(id); err != nil {
			t.Fatalf("ValidateID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "f1 ", " f1", "a\nb", "a\rb"} {
		if err := ledger.ValidateID(id); err == nil {
			t.Fatalf("ValidateID(%q) = nil, want error", id)
		}
	}
}

func TestSnapshotDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "done.txt")
	l, _ := ledger.Open(path)

	set, err := l.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("expected empty set, got %v", set.IDs())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no ledger file, stat err=%v", err)
	}

	if err := l.Record("f1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	set, err = l.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !set.Contains("f1") {
		t.Fatalf("expected f1 in snapshot, got %v", set.IDs())
	}
}

func TestLoadUnreadableStorageFails(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the file cannot be read as a ledger.
	path := filepath.Join(dir, "done.txt")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	l, _ := ledger.Open(path)
	if _, err := l.Load(); !errors.Is(err, services.ErrLedgerStorage) {
		t.Fatalf("expected ledger storage error, got %v", err)
	}
	if _, err := l.Snapshot(); !errors.Is(err, services.ErrLedgerStorage) {
		t.Fatalf("expected ledger storage error from snapshot, got %v", err)
	}
	if err := l.Record("f1"); !errors.Is(err, services.ErrLedgerStorage) {
		t.Fatalf("expected ledger storage error on append, got %v", err)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := ledger.Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
