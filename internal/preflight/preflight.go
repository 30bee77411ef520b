package preflight

import (
	"context"

	"reelsmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks, plus the speech provider check
// when includeNetwork is set.
func RunAll(ctx context.Context, cfg *config.Config, includeNetwork bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Upload directory", cfg.Paths.UploadDir),
		CheckDirectoryAccess("Reels directory", cfg.Paths.ReelsDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if includeNetwork {
		results = append(results, CheckSpeechProvider(ctx, cfg.Speech.BaseURL, cfg.Speech.APIKey))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
