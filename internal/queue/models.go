package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a delivery job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// Job represents a delivery job persisted in SQLite.
//
// The daemon records bookkeeping only; execution belongs to the external
// engine, which reports progress and terminal status back over the control
// API.
type Job struct {
	ID              int64
	UUID            string
	SourcePathsJSON string
	Engine          string
	DeliverJSON     string
	Status          Status
	ErrorMessage    string
	ProgressPercent float64
	ProgressMessage string
	CancelRequested bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status is a final state.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// IsTerminal reports whether the job reached a final state.
func (j Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// SourcePaths decodes the stored source path list.
func (j Job) SourcePaths() []string {
	if strings.TrimSpace(j.SourcePathsJSON) == "" {
		return nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(j.SourcePathsJSON), &paths); err != nil {
		return nil
	}
	return paths
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressMessage = message
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
	Cancelled int
}
