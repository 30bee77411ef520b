package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"reelsmith/internal/logging"
)

// watch wakes the poll loop when entries appear under the upload root. New
// work folders and files written into them both count; the cycle itself
// decides eligibility.
func (m *Manager) watch(ctx context.Context) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(m.uploadDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", m.uploadDir, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
					m.logger.Debug("upload activity", logging.String("path", event.Name))
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && event.Has(fsnotify.Create) {
						// Files land inside the new folder, so watch it as well.
						_ = watcher.Add(event.Name)
					}
					m.Wake()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.logger.Debug("upload watcher error", logging.Error(err))
			}
		}
	}()

	m.logger.Info("watching upload root", logging.String("upload_dir", m.uploadDir))
	return func() {
		_ = watcher.Close()
		<-done
	}, nil
}
