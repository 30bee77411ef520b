// Command reelsmithd runs the reel pipeline until SIGINT/SIGTERM or a fatal
// ledger error. It takes no flags; configuration comes from the default
// config search path and the environment.
package main

import (
	"context"
	"fmt"
	"os"

	"reelsmith/internal/config"
	"reelsmith/internal/daemonrun"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "reelsmithd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, _, _, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return daemonrun.Run(ctx, cfg, daemonrun.Options{})
}
