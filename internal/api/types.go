package api

import (
	"time"

	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/deliver"
)

// JobView is the read-only projection of a delivery job.
type JobView struct {
	ID              int64      `json:"id"`
	UUID            string     `json:"uuid"`
	SourcePaths     []string   `json:"source_paths"`
	Engine          string     `json:"engine"`
	Status          string     `json:"status"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	ProgressPercent float64    `json:"progress_percent"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	CancelRequested bool       `json:"cancel_requested"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// QueueListResponse wraps the job listing payload.
type QueueListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// JobResponse wraps a single job payload.
type JobResponse struct {
	Job JobView `json:"job"`
}

// CreateJobRequest is the job creation payload.
type CreateJobRequest struct {
	SourcePaths     []string         `json:"source_paths"`
	Engine          string           `json:"engine,omitempty"`
	DeliverSettings deliver.Settings `json:"deliver_settings"`
}

// CreateJobResponse returns the new job's public identifier.
type CreateJobResponse struct {
	JobID string `json:"job_id"`
}

// StatusReportRequest is the engine's progress or terminal report.
type StatusReportRequest struct {
	Status          string  `json:"status,omitempty"`
	ProgressPercent float64 `json:"progress_percent"`
	ProgressMessage string  `json:"progress_message,omitempty"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// RoutingRequest asks for a routing decision on one path.
type RoutingRequest struct {
	Path string `json:"path"`
}

// RoutingResponse carries the decision for a path.
type RoutingResponse struct {
	Path    string               `json:"path"`
	Routing capabilities.Routing `json:"routing"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string `json:"status"`
	PID       int    `json:"pid"`
	AuditMode bool   `json:"audit_mode,omitempty"`
	Queue     Queue  `json:"queue"`
}

// Queue summarizes job counts by lifecycle state.
type Queue struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// ResetResponse reports how many jobs a queue reset removed.
type ResetResponse struct {
	Removed int64 `json:"removed"`
}

// ValidationErrorResponse carries per-field validation failures.
type ValidationErrorResponse struct {
	Error  string               `json:"error"`
	Fields []deliver.FieldError `json:"fields,omitempty"`
}
