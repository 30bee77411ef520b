package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/daemon"
	"reelsmith/internal/ledger"
	"reelsmith/internal/logging"
	"reelsmith/internal/preflight"
	"reelsmith/internal/queue"
	"reelsmith/internal/slideshow"
	"reelsmith/internal/speech"
	"reelsmith/internal/staging"
	"reelsmith/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel string
}

// Run starts the reelsmith daemon and blocks until SIGINT/SIGTERM, cmdCtx
// cancellation, or a fatal queue processor error. Only the last case, and
// startup failures, return a non-nil error.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		copied := *cfg
		copied.Logging.Level = level
		cfg = &copied
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("reelsmith-%s.log", runID))
	logger, err := logging.NewFromConfig(cfg, logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update reelsmith.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "reelsmith-*.log", Exclude: []string{logPath}},
	)

	if failed := runStartupChecks(signalCtx, cfg, logger); failed {
		return errors.New("startup checks failed; see log for details")
	}
	cleanScratch(signalCtx, cfg, logger)

	store, err := queue.Open(cfg.DatabasePath())
	if err != nil {
		logger.Error("open attempt store", logging.Error(err))
		return err
	}
	l, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		_ = store.Close()
		return err
	}

	client := speech.NewClient(speech.Config{
		BaseURL: cfg.Speech.BaseURL,
		APIKey:  cfg.Speech.APIKey,
		Timeout: cfg.SpeechTimeout(),
	})
	synth := speech.NewSynthesizer(client, cfg.Speech.VoiceID, cfg.Speech.Format, logger)
	assembler := slideshow.NewAssembler(cfg, logger)
	manager := workflow.NewManager(cfg, l, store, synth, assembler, logger)

	d, err := daemon.New(cfg, store, l, logger, manager)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other reelsmithd instance or check state_dir permissions"),
		)
		return err
	}

	// The pid file belongs to the lock holder, so it is written only after Start.
	pidPath := pidFilePath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	select {
	case <-signalCtx.Done():
		logger.Info("reelsmith daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
		return nil
	case err := <-d.Fatal():
		return fmt.Errorf("queue processor stopped: %w", err)
	}
}

// runStartupChecks logs the binary and directory checks and reports whether
// a required one failed.
func runStartupChecks(ctx context.Context, cfg *config.Config, logger *slog.Logger) bool {
	failed := false
	for _, status := range preflight.CheckSystemDeps(cfg) {
		logger.Info("dependency snapshot",
			logging.String("name", status.Name),
			logging.String("command", status.Command),
			logging.Bool("available", status.Available),
			logging.String(logging.FieldEventType, "dependency_snapshot"),
		)
		if !status.Available && !status.Optional {
			failed = true
			logging.ErrorWithContext(logger, "required binary missing", "dependency_missing",
				logging.String("name", status.Name),
				logging.String("detail", status.Detail),
				logging.String(logging.FieldErrorHint, "install ffmpeg or set encoder binaries in config"),
			)
		}
	}
	for _, result := range preflight.RunAll(ctx, cfg, false) {
		if result.Passed {
			continue
		}
		failed = true
		logging.ErrorWithContext(logger, "directory check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "fix ownership or permissions of the configured paths"),
		)
	}
	return failed
}

func cleanScratch(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	maxAge := cfg.StagingMaxAge()
	scratch := staging.CleanStale(ctx, cfg.StagingDir(), maxAge, logger)
	partials := staging.CleanPartialReels(ctx, cfg.Paths.ReelsDir, maxAge, logger)
	if removed := len(scratch.Removed) + len(partials.Removed); removed > 0 {
		logger.Info("startup scratch cleanup",
			logging.Int("removed", removed),
			logging.String(logging.FieldEventType, "staging_cleanup_summary"),
		)
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "reelsmith.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func pidFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "reelsmithd.pid")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// ReadPID returns the pid recorded by a running daemon, or 0 when none is
// recorded.
func ReadPID(cfg *config.Config) int {
	raw, err := os.ReadFile(pidFilePath(cfg))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0
	}
	return pid
}
