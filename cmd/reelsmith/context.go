package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/ledger"
	"reelsmith/internal/queue"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) flagPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.flagPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// withStore opens the attempt store for the duration of fn. SQLite WAL mode
// lets this run alongside a live daemon.
func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open attempt store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) openLedger() (*ledger.Ledger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ledger.Open(cfg.LedgerPath())
}

// daemonRunning reports whether another process holds the daemon lock.
func daemonRunning(cfg *config.Config) (bool, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return false, err
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
