package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gofrs/flock"

	"reelsmith/internal/config"
	"reelsmith/internal/deps"
	"reelsmith/internal/ledger"
	"reelsmith/internal/logging"
	"reelsmith/internal/preflight"
	"reelsmith/internal/queue"
	"reelsmith/internal/workflow"
)

// Daemon coordinates the queue processor and the optional HTTP API, and
// enforces single-instance execution so there is exactly one ledger writer.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	ledger   *ledger.Ledger
	workflow *workflow.Manager
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.StatusSummary
	DatabasePath string
	LedgerPath   string
	LockFilePath string
	APIAddress   string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, l *ledger.Ledger, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || l == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, ledger, and workflow manager")
	}
	logger = logging.NewComponentLogger(logger, "daemon")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		ledger:   l,
		workflow: wf,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, then launches the queue processor and the
// API server when one is configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another reelsmith daemon holds %s", d.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.workflow.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		cancel()
		d.workflow.Stop()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("reelsmith daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldEventType, "daemon_start"),
	)
	return nil
}

// Fatal delivers the error that stopped the queue processor.
func (d *Daemon) Fatal() <-chan error {
	return d.workflow.Fatal()
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("reelsmith daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close stops the daemon and releases the attempt store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.workflow.Status(ctx),
		DatabasePath: d.store.Path(),
		LedgerPath:   d.ledger.Path(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.address(),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
	}
}
