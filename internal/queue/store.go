package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Get returns the record for folderID, or nil when the folder has never been
// attempted.
func (s *Store) Get(ctx context.Context, folderID string) (*Record, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+recordColumns+` FROM folders WHERE folder_id = ?`, folderID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get folder %s: %w", folderID, err)
	}
	return record, nil
}

// List returns records ordered by most recent update. When statuses are given
// only matching records are returned.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM folders`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY updated_at DESC, folder_id ASC`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// FailedIDs returns the identifiers in the terminal failed state.
func (s *Store) FailedIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT folder_id FROM folders WHERE status = ?`, string(StatusFailed))
	if err != nil {
		return nil, fmt.Errorf("list failed folders: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// MarkProcessing records that a cycle started working on folderID.
func (s *Store) MarkProcessing(ctx context.Context, folderID, stage string) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO folders (folder_id, status, attempts, last_stage, last_attempt_at, created_at, updated_at)
         VALUES (?, ?, 0, ?, ?, ?, ?)
         ON CONFLICT(folder_id) DO UPDATE SET
             status = excluded.status,
             last_stage = excluded.last_stage,
             last_attempt_at = excluded.last_attempt_at,
             updated_at = excluded.updated_at`,
		folderID, string(StatusProcessing), nullableString(stage), now, now, now,
	)
	if err != nil {
		return fmt.Errorf("mark folder %s processing: %w", folderID, err)
	}
	return nil
}

// MarkDone records that the reel for folderID was produced and ledgered.
func (s *Store) MarkDone(ctx context.Context, folderID string) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO folders (folder_id, status, attempts, created_at, updated_at)
         VALUES (?, ?, 0, ?, ?)
         ON CONFLICT(folder_id) DO UPDATE SET
             status = excluded.status,
             last_error = NULL,
             updated_at = excluded.updated_at`,
		folderID, string(StatusDone), now, now,
	)
	if err != nil {
		return fmt.Errorf("mark folder %s done: %w", folderID, err)
	}
	return nil
}

// RecordSkip notes that folderID was not ready. The attempt counter is left
// untouched and the folder stays pending.
func (s *Store) RecordSkip(ctx context.Context, folderID, stage, reason string) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO folders (folder_id, status, attempts, last_error, last_stage, created_at, updated_at)
         VALUES (?, ?, 0, ?, ?, ?, ?)
         ON CONFLICT(folder_id) DO UPDATE SET
             status = excluded.status,
             last_error = excluded.last_error,
             last_stage = excluded.last_stage,
             updated_at = excluded.updated_at`,
		folderID, string(StatusPending), nullableString(reason), nullableString(stage), now, now,
	)
	if err != nil {
		return fmt.Errorf("record skip for %s: %w", folderID, err)
	}
	return nil
}

// RecordFailure increments the attempt counter for folderID and stores the
// failure. When maxAttempts is positive and reached, the folder moves to the
// terminal failed state. The resulting record is returned.
func (s *Store) RecordFailure(ctx context.Context, folderID, stage, message string, maxAttempts int) (*Record, error) {
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO folders (folder_id, status, attempts, last_error, last_stage, last_attempt_at, created_at, updated_at)
         VALUES (?, ?, 1, ?, ?, ?, ?, ?)
         ON CONFLICT(folder_id) DO UPDATE SET
             status = ?,
             attempts = folders.attempts + 1,
             last_error = excluded.last_error,
             last_stage = excluded.last_stage,
             last_attempt_at = excluded.last_attempt_at,
             updated_at = excluded.updated_at`,
		folderID, string(StatusPending), nullableString(strings.TrimSpace(message)), nullableString(stage), now, now, now,
		string(StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("record failure for %s: %w", folderID, err)
	}
	if maxAttempts > 0 {
		if _, err := s.execWithRetry(ctx,
			`UPDATE folders SET status = ? WHERE folder_id = ? AND attempts >= ?`,
			string(StatusFailed), folderID, maxAttempts,
		); err != nil {
			return nil, fmt.Errorf("apply retry ceiling for %s: %w", folderID, err)
		}
	}
	return s.Get(ctx, folderID)
}

// Retry clears the terminal failed state of folderID so the next cycle picks
// it up again. It reports whether a failed record was reset.
func (s *Store) Retry(ctx context.Context, folderID string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE folders SET status = ?, attempts = 0, last_error = NULL, updated_at = ?
         WHERE folder_id = ? AND status = ?`,
		string(StatusPending), formatTime(time.Now()), folderID, string(StatusFailed),
	)
	if err != nil {
		return false, fmt.Errorf("retry folder %s: %w", folderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ResetStuckProcessing returns folders left in processing by an interrupted
// run to pending.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE folders SET status = ?, updated_at = ? WHERE status = ?`,
		string(StatusPending), formatTime(time.Now()), string(StatusProcessing),
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck folders: %w", err)
	}
	return res.RowsAffected()
}

// Summary returns a count of records grouped by status.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM folders GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("folder stats: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		switch Status(status) {
		case StatusPending:
			summary.Pending += count
		case StatusProcessing:
			summary.Processing += count
		case StatusDone:
			summary.Done += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	return summary, rows.Err()
}
