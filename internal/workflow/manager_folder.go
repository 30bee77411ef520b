package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
	"reelsmith/internal/services"
	"reelsmith/internal/workfolder"
)

type folderOutcome int

const (
	outcomeDone folderOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// processFolder runs both stages for folder and records it in the ledger on
// success. The returned error is non-nil only when processing must stop.
func (m *Manager) processFolder(ctx context.Context, folder workfolder.WorkFolder) (folderOutcome, error) {
	requestID := uuid.NewString()
	ctx = services.WithRequestID(services.WithFolderID(ctx, folder.ID), requestID)
	logger := logging.WithContext(ctx, m.logger)
	m.setLastFolder(folder.ID)

	start := time.Now()
	logger.Info("folder started", logging.String(logging.FieldEventType, "folder_start"))

	m.markProcessing(ctx, logger, folder.ID, stageSpeech)
	if err := m.synth.Synthesize(ctx, folder); err != nil {
		return m.handleStageError(ctx, logger, folder.ID, stageSpeech, err)
	}

	m.markProcessing(ctx, logger, folder.ID, stageSlideshow)
	result, err := m.assembler.Assemble(ctx, folder)
	if err != nil {
		return m.handleStageError(ctx, logger, folder.ID, stageSlideshow, err)
	}

	if err := m.ledger.Record(folder.ID); err != nil {
		return outcomeFailed, err
	}
	if err := m.store.MarkDone(ctx, folder.ID); err != nil {
		logger.Warn("failed to mark folder done in attempt store", logging.Error(err))
	}

	logger.Info("folder processed",
		logging.String("reel", result.OutputPath),
		logging.Int("images", result.Images),
		logging.Float64("audio_seconds", result.AudioSeconds),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "folder_done"),
	)
	return outcomeDone, nil
}

func (m *Manager) markProcessing(ctx context.Context, logger *slog.Logger, folderID, stage string) {
	if err := m.store.MarkProcessing(ctx, folderID, stage); err != nil {
		logger.Warn("failed to record processing state", logging.String(logging.FieldStage, stage), logging.Error(err))
	}
}

func (m *Manager) handleStageError(ctx context.Context, logger *slog.Logger, folderID, stage string, stageErr error) (folderOutcome, error) {
	if ctx.Err() != nil {
		return outcomeFailed, ctx.Err()
	}
	if services.IsFatal(stageErr) {
		return outcomeFailed, stageErr
	}

	details := services.Details(stageErr)
	if services.IsSkip(stageErr) {
		logger.Info("folder not ready; will retry next cycle",
			logging.String(logging.FieldStage, stage),
			logging.String("reason", details.Message),
			logging.String(logging.FieldEventType, "folder_skipped"),
		)
		if err := m.store.RecordSkip(ctx, folderID, stage, details.Message); err != nil {
			logger.Warn("failed to record skip", logging.Error(err))
		}
		return outcomeSkipped, nil
	}

	m.setLastError(stageErr)
	logging.ErrorWithContext(logger, "folder failed; will retry next cycle", "folder_failed",
		logging.String(logging.FieldStage, stage),
		logging.String(logging.FieldErrorKind, details.Kind),
		logging.String(logging.FieldErrorOperation, details.Operation),
		logging.Error(stageErr),
		logging.String(logging.FieldErrorHint, hintFor(details.Kind)),
	)

	record, err := m.store.RecordFailure(ctx, folderID, stage, strings.TrimSpace(stageErr.Error()), m.maxAttempts)
	if err != nil {
		logger.Warn("failed to record failure", logging.Error(err))
		return outcomeFailed, nil
	}
	if record != nil && record.Status == queue.StatusFailed {
		logging.WarnWithContext(logger, "retry ceiling reached; folder parked", "folder_parked",
			logging.Int("attempts", record.Attempts),
			logging.Int("max_attempts", m.maxAttempts),
			logging.String(logging.FieldImpact, "folder is excluded from future cycles"),
			logging.String(logging.FieldErrorHint, "fix the folder and run reelsmith retry "+folderID),
		)
	}
	return outcomeFailed, nil
}

func hintFor(kind string) string {
	switch kind {
	case "integration_error":
		return "check speech.api_key and provider availability"
	case "external_tool_error":
		return "check ffmpeg output above and the folder's images"
	default:
		return "check logs for details"
	}
}
