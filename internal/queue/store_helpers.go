package queue

import (
	"database/sql"
	"errors"
	"time"
)

const recordColumns = "folder_id, status, attempts, last_error, last_stage, last_attempt_at, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		folderID       string
		statusStr      string
		attempts       int
		lastError      sql.NullString
		lastStage      sql.NullString
		lastAttemptRaw sql.NullString
		createdRaw     string
		updatedRaw     string
	)
	if err := scanner.Scan(
		&folderID,
		&statusStr,
		&attempts,
		&lastError,
		&lastStage,
		&lastAttemptRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		FolderID:  folderID,
		Status:    Status(statusStr),
		Attempts:  attempts,
		LastError: lastError.String,
		LastStage: lastStage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	if lastAttemptRaw.Valid {
		if attempted, err := parseTimeString(lastAttemptRaw.String); err == nil {
			record.LastAttemptAt = &attempted
		}
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
