package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of one ingestion attempt.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{StatusCompleted, StatusSkipped, StatusFailed}

// ParseStatus converts a user supplied string into a Status.
func ParseStatus(value string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown ledger status %q", value)
}

// Record is one ingestion outcome. Records are immutable once written.
type Record struct {
	ID          int64
	RunID       string
	Source      string
	Status      Status
	ContentHash string
	RowCount    int64
	ByteSize    int64
	RawPath     string
	Reason      string
	Error       string
	CreatedAt   time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Source string
	Status Status
	Limit  int
}
