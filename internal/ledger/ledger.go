package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"reelsmith/internal/services"
)

const stageName = "ledger"

// Ledger is the append-only record of work folders whose reel has been
// produced. One identifier per line, never pruned.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// Open binds a ledger to path. The file is not touched until Load or Record.
func Open(path string) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrLedgerStorage, stageName, "open", "ledger path is empty", nil)
	}
	return &Ledger{path: path}, nil
}

// Path returns the backing file location.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads all recorded identifiers. A missing file is created empty.
func (l *Ledger) Load() (Set, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, err := l.read()
	if errors.Is(err, fs.ErrNotExist) {
		if err := l.create(); err != nil {
			return Set{}, err
		}
		return Set{}, nil
	}
	return set, err
}

// Snapshot reads the recorded identifiers without creating the file. A missing
// ledger reads as empty.
func (l *Ledger) Snapshot() (Set, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, err := l.read()
	if errors.Is(err, fs.ErrNotExist) {
		return Set{}, nil
	}
	return set, err
}

// read returns fs.ErrNotExist unwrapped so callers can decide how to treat
// absence.
func (l *Ledger) read() (Set, error) {
	file, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Set{}, err
	}
	if err != nil {
		return Set{}, services.Wrap(services.ErrLedgerStorage, stageName, "load", "open ledger", err)
	}
	defer file.Close()

	set := Set{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		set.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Set{}, services.Wrap(services.ErrLedgerStorage, stageName, "load", "read ledger", err)
	}
	return set, nil
}

// ValidateID reports whether id survives a write and read of the line format
// unchanged. Identifiers that fail can never be matched against the ledger.
func ValidateID(id string) error {
	switch {
	case id == "":
		return errors.New("identifier is empty")
	case strings.ContainsAny(id, "\r\n"):
		return fmt.Errorf("identifier %q contains a line break", id)
	case id != strings.TrimSpace(id):
		return fmt.Errorf("identifier %q has leading or trailing whitespace", id)
	}
	return nil
}

// Record appends id to the ledger and syncs it to disk. Duplicate entries are
// not checked here; readers collapse them.
func (l *Ledger) Record(id string) error {
	if err := ValidateID(id); err != nil {
		return services.Wrap(services.ErrLedgerStorage, stageName, "append", "invalid identifier", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return services.Wrap(services.ErrLedgerStorage, stageName, "append", "create ledger directory", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return services.Wrap(services.ErrLedgerStorage, stageName, "append", "open ledger", err)
	}
	if _, err := file.WriteString(id + "\n"); err != nil {
		_ = file.Close()
		return services.Wrap(services.ErrLedgerStorage, stageName, "append", "write entry", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return services.Wrap(services.ErrLedgerStorage, stageName, "append", "sync ledger", err)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrLedgerStorage, stageName, "append", "close ledger", err)
	}
	return nil
}

func (l *Ledger) create() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return services.Wrap(services.ErrLedgerStorage, stageName, "create", "create ledger directory", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return services.Wrap(services.ErrLedgerStorage, stageName, "create", "create ledger", err)
	}
	return file.Close()
}

// Set is the deduplicated view of ledger entries in first-seen order.
type Set struct {
	ids   []string
	index map[string]struct{}
}

func (s *Set) add(line string) {
	id := strings.TrimSpace(line)
	if id == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Contains reports whether id has been recorded.
func (s Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s Set) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the recorded identifiers.
func (s Set) IDs() []string {
	return append([]string(nil), s.ids...)
}
