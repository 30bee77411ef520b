package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingPrerequisite marks a folder that is not ready yet (no
	// description, no audio, no images). The folder is skipped and retried on
	// the next cycle without counting an attempt.
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	// ErrIntegration marks a failure talking to the speech provider.
	ErrIntegration = errors.New("integration error")
	// ErrExternalTool marks a failed ffmpeg/ffprobe invocation.
	ErrExternalTool = errors.New("external tool error")
	// ErrLedgerStorage marks an unreadable or unwritable ledger. Fatal.
	ErrLedgerStorage = errors.New("ledger storage error")
	ErrConfiguration = errors.New("configuration error")
)

var markers = []error{
	ErrMissingPrerequisite,
	ErrIntegration,
	ErrExternalTool,
	ErrLedgerStorage,
	ErrConfiguration,
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrIntegration
	}
	return &StageError{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Cause:     err,
	}
}

// StageError carries the classification and context of a stage failure.
type StageError struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Cause     error
}

func (e *StageError) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Marker, detail, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Marker, detail)
}

func (e *StageError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Cause}
}

// ErrorDetails is the structured view of an error used in log fields.
type ErrorDetails struct {
	Kind      string
	Stage     string
	Operation string
	Message   string
}

// Details extracts the classification of err. Errors not produced by Wrap
// report an empty stage and operation with the kind derived from any marker in
// the chain, or "unknown".
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: kindOf(err), Message: err.Error()}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		details.Stage = stageErr.Stage
		details.Operation = stageErr.Operation
		if stageErr.Message != "" {
			details.Message = stageErr.Message
		}
	}
	return details
}

// IsSkip reports whether err signals a folder that is merely not ready yet.
func IsSkip(err error) bool {
	return errors.Is(err, ErrMissingPrerequisite)
}

// IsFatal reports whether err must stop the processing loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrLedgerStorage)
}

func kindOf(err error) string {
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return strings.ReplaceAll(marker.Error(), " ", "_")
		}
	}
	return "unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
