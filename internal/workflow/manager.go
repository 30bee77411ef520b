package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/ledger"
	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/slideshow"
	"reelsmith/internal/workfolder"
)

const (
	stageSpeech    = "speech"
	stageSlideshow = "slideshow"
)

// Synthesizer produces narration audio for a work folder.
type Synthesizer interface {
	Synthesize(ctx context.Context, folder workfolder.WorkFolder) error
}

// Assembler produces the reel for a work folder.
type Assembler interface {
	Assemble(ctx context.Context, folder workfolder.WorkFolder) (slideshow.Result, error)
}

// Manager coordinates the poll loop.
type Manager struct {
	uploadDir    string
	ledger       *ledger.Ledger
	store        *queue.Store
	synth        Synthesizer
	assembler    Assembler
	logger       *slog.Logger
	pollInterval time.Duration
	maxAttempts  int
	watchUploads bool

	wake chan struct{}

	// rejected holds folder names already reported as unusable; loop goroutine only.
	rejected map[string]struct{}

	mu         sync.RWMutex
	running    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	fatal      chan error
	lastErr    error
	lastFolder string
	lastCycle  CycleReport
	cycles     int
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithPollInterval overrides the configured delay between cycles.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, l *ledger.Ledger, store *queue.Store, synth Synthesizer, assembler Assembler, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		uploadDir:    cfg.Paths.UploadDir,
		ledger:       l,
		store:        store,
		synth:        synth,
		assembler:    assembler,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: cfg.PollInterval(),
		maxAttempts:  cfg.Workflow.MaxAttempts,
		watchUploads: cfg.Workflow.WatchUploads,
		wake:         make(chan struct{}, 1),
		rejected:     make(map[string]struct{}),
		fatal:        make(chan error, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	return m
}

// Start begins background processing. A fatal error stops the loop and is
// delivered on Fatal.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		err := m.Run(runCtx)
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		if err != nil {
			m.fatal <- err
		}
	}()
	return nil
}

// Stop terminates background processing and waits for the current folder to
// finish or observe cancellation.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
}

// Fatal delivers the error that stopped a Start-ed loop.
func (m *Manager) Fatal() <-chan error {
	return m.fatal
}

// Wake requests an early cycle. It never blocks.
func (m *Manager) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
