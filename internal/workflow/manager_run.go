package workflow

import (
	"context"
	"errors"
	"time"

	"reelsmith/internal/ledger"
	"reelsmith/internal/logging"
	"reelsmith/internal/workfolder"
)

// CycleReport summarizes one pass over the upload root.
type CycleReport struct {
	Started     time.Time
	Finished    time.Time
	Listed      int
	AlreadyDone int
	Parked      int
	Waiting     int
	Processed   int
	Skipped     int
	Failed      int
}

// Run executes cycles until ctx is cancelled or a fatal error occurs. It
// returns nil on cancellation.
func (m *Manager) Run(ctx context.Context) error {
	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		logging.WarnWithContext(m.logger, "reset of interrupted folders failed", "stuck_reset_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "status view may show stale processing entries"),
		)
	} else if reset > 0 {
		m.logger.Info("reset interrupted folders", logging.Int64("count", reset))
	}

	if m.watchUploads {
		stop, err := m.watch(ctx)
		if err != nil {
			logging.WarnWithContext(m.logger, "upload watcher unavailable; polling only", "upload_watch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "new uploads are picked up on the next poll"),
			)
		} else {
			defer stop()
		}
	}

	m.logger.Info("queue processor started",
		logging.String("upload_dir", m.uploadDir),
		logging.Duration("poll_interval", m.pollInterval),
		logging.Int("max_attempts", m.maxAttempts),
		logging.String(logging.FieldEventType, "processor_start"),
	)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := m.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			m.setLastError(err)
			logging.ErrorWithContext(m.logger, "queue processor stopping", "processor_fatal",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ledger file permissions and disk space"),
			)
			return err
		}
		m.waitForCycleOrShutdown(ctx)
	}
}

// RunOnce executes a single cycle. Only fatal errors are returned.
func (m *Manager) RunOnce(ctx context.Context) (CycleReport, error) {
	report := CycleReport{Started: time.Now()}
	defer func() {
		report.Finished = time.Now()
		m.setLastCycle(report)
	}()

	done, err := m.ledger.Load()
	if err != nil {
		return report, err
	}

	parked, err := m.store.FailedIDs(ctx)
	if err != nil {
		logging.WarnWithContext(m.logger, "failed folder lookup failed; processing all pending folders", "attempt_store_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "folders past the retry ceiling may be attempted again"),
		)
		parked = nil
	}

	folders, err := workfolder.List(m.uploadDir)
	if err != nil {
		logging.WarnWithContext(m.logger, "upload root unreadable; cycle skipped", "upload_list_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.upload_dir exists and is readable"),
			logging.String(logging.FieldImpact, "no folders processed this cycle"),
		)
		return report, nil
	}
	report.Listed = len(folders)

	for _, folder := range folders {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err := ledger.ValidateID(folder.ID); err != nil {
			report.Skipped++
			m.rejectFolder(folder.ID, err)
			continue
		}
		if done.Contains(folder.ID) {
			report.AlreadyDone++
			continue
		}
		if _, ok := parked[folder.ID]; ok {
			report.Parked++
			continue
		}
		if !folder.HasDescription() {
			report.Waiting++
			m.logger.Debug("folder has no description yet", logging.String(logging.FieldFolderID, folder.ID))
			continue
		}

		outcome, err := m.processFolder(ctx, folder)
		if err != nil {
			return report, err
		}
		switch outcome {
		case outcomeDone:
			report.Processed++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}

	if report.Processed+report.Skipped+report.Failed > 0 {
		m.logger.Info("cycle complete",
			logging.Int("listed", report.Listed),
			logging.Int("processed", report.Processed),
			logging.Int("skipped", report.Skipped),
			logging.Int("failed", report.Failed),
			logging.String(logging.FieldEventType, "cycle_complete"),
		)
	}
	return report, nil
}

// rejectFolder reports a folder whose name cannot be stored in the ledger.
// Processing it would succeed without ever being marked done.
func (m *Manager) rejectFolder(id string, reason error) {
	if _, seen := m.rejected[id]; seen {
		m.logger.Debug("folder name still unusable", logging.String(logging.FieldFolderID, id))
		return
	}
	m.rejected[id] = struct{}{}
	logging.WarnWithContext(m.logger, "folder name cannot be recorded; folder ignored", "folder_name_rejected",
		logging.String(logging.FieldFolderID, id),
		logging.Error(reason),
		logging.String(logging.FieldErrorHint, "rename the folder without line breaks or surrounding spaces"),
		logging.String(logging.FieldImpact, "folder is never processed under its current name"),
	)
}

func (m *Manager) waitForCycleOrShutdown(ctx context.Context) {
	timer := time.NewTimer(m.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-m.wake:
	}
}
