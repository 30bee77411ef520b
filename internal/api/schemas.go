package api

import (
	"time"

	"reelsmith/internal/queue"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewUploadResponse carries a freshly minted folder identifier.
type NewUploadResponse struct {
	ID string `json:"id"`
}

// UploadResponse describes a stored upload.
type UploadResponse struct {
	ID             string   `json:"id"`
	Files          []string `json:"files"`
	HasDescription bool     `json:"has_description"`
}

// Reel is one entry of the gallery.
type Reel struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// GalleryResponse lists finished reels.
type GalleryResponse struct {
	Reels []Reel `json:"reels"`
}

// Folder mirrors one attempt store record.
type Folder struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	LastError     string     `json:"last_error,omitempty"`
	LastStage     string     `json:"last_stage,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// FoldersResponse lists attempt store records.
type FoldersResponse struct {
	Folders []Folder `json:"folders"`
}

// FolderFromRecord converts a store record to its JSON form.
func FolderFromRecord(rec *queue.Record) Folder {
	return Folder{
		ID:            rec.FolderID,
		Status:        string(rec.Status),
		Attempts:      rec.Attempts,
		LastError:     rec.LastError,
		LastStage:     rec.LastStage,
		LastAttemptAt: rec.LastAttemptAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}
