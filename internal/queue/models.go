package queue

import "time"

// Status represents the lifecycle of a work folder in the attempt store.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusDone,
	StatusFailed,
}

// ParseStatus converts a string into a Status, reporting whether it is known.
func ParseStatus(value string) (Status, bool) {
	for _, status := range allStatuses {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

// Record tracks processing attempts for one work folder.
type Record struct {
	FolderID      string
	Status        Status
	Attempts      int
	LastError     string
	LastStage     string
	LastAttemptAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal reports whether the folder no longer enters processing cycles.
func (r Record) IsTerminal() bool {
	return r.Status == StatusFailed || r.Status == StatusDone
}

// Summary aggregates record counts by status.
type Summary struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}
