package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelsmith/internal/logging"
)

// partialSuffix marks an in-progress reel written by the slideshow assembler.
const partialSuffix = ".partial.mp4"

// CleanStaleResult contains the outcome of a stale cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes scratch directories under stagingDir older than maxAge.
// Scratch directories are normally removed by the assembler; anything left
// behind belongs to a process that was killed mid-encode.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	return clean(ctx, stagingDir, maxAge, logger, func(entry os.DirEntry) bool {
		return entry.IsDir()
	})
}

// CleanPartialReels removes hidden ".<id>.partial.mp4" files under reelsDir
// older than maxAge.
func CleanPartialReels(ctx context.Context, reelsDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	return clean(ctx, reelsDir, maxAge, logger, func(entry os.DirEntry) bool {
		name := entry.Name()
		return !entry.IsDir() && strings.HasPrefix(name, ".") && strings.HasSuffix(name, partialSuffix)
	})
}

func clean(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger, match func(os.DirEntry) bool) CleanStaleResult {
	result := CleanStaleResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !match(entry) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale scratch", "staging_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Info("removed stale scratch",
				logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}
	return result
}

// ListDirectories returns all scratch directories with their metadata.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

// DirInfo contains metadata about a scratch directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // best effort
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
