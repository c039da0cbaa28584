package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/config"
	"mediaproxy/internal/deliver"
	"mediaproxy/internal/metrics"
	"mediaproxy/internal/queue"
	"mediaproxy/internal/services"
)

// JobStore abstracts the queue operations the job service needs.
type JobStore interface {
	NewJob(ctx context.Context, sourcePaths []string, engine, deliverJSON string) (*queue.Job, error)
	GetByUUID(ctx context.Context, jobUUID string) (*queue.Job, error)
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	Start(ctx context.Context, jobUUID string) (*queue.Job, error)
	UpdateProgress(ctx context.Context, jobUUID string, percent float64, message string) error
	Finish(ctx context.Context, jobUUID string, status queue.Status, errorMessage string) (*queue.Job, error)
	RequestCancel(ctx context.Context, jobUUID string) (*queue.Job, error)
	Health(ctx context.Context) (queue.HealthSummary, error)
	Reset(ctx context.Context) (int64, error)
}

// CapabilitySource yields the current capability snapshot.
type CapabilitySource interface {
	Get(ctx context.Context) capabilities.Capabilities
}

// ValidationError carries field-level failures across the service boundary.
type ValidationError struct {
	Fields []deliver.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	return fmt.Sprintf("%d delivery settings are invalid", len(e.Fields))
}

// JobService owns job creation and lifecycle bookkeeping for the control
// API.
type JobService struct {
	cfg     *config.Config
	store   JobStore
	caps    CapabilitySource
	metrics *metrics.Metrics
}

// NewJobService wires the service. metrics may be nil outside the daemon.
func NewJobService(cfg *config.Config, store JobStore, caps CapabilitySource, m *metrics.Metrics) *JobService {
	return &JobService{cfg: cfg, store: store, caps: caps, metrics: m}
}

const defaultEngine = "ffmpeg"

// Create validates a job request and enqueues it pending. Delivery settings
// validation happens here — on submit — and per-path routing is checked
// against the live capability snapshot, so RAW material without a capable
// engine is rejected with the engine's reason rather than queued to fail.
func (s *JobService) Create(ctx context.Context, req CreateJobRequest) (*queue.Job, error) {
	paths := make([]string, 0, len(req.SourcePaths))
	for _, path := range req.SourcePaths {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	if len(paths) == 0 {
		s.countRejected()
		return nil, services.Wrap(services.ErrValidation, "jobs", "create", "no source paths provided", nil)
	}

	settings := req.DeliverSettings
	settings.ApplyDefaults(s.cfg)
	if fieldErrs := settings.Validate(); len(fieldErrs) > 0 {
		s.countRejected()
		return nil, services.Wrap(services.ErrValidation, "jobs", "create", "", &ValidationError{Fields: fieldErrs})
	}

	engine := strings.TrimSpace(req.Engine)
	if engine == "" {
		engine = defaultEngine
	}

	if s.caps != nil {
		snapshot := s.caps.Get(ctx)
		for _, path := range paths {
			routing := capabilities.CheckFileRouting(&snapshot, path)
			if !routing.CanProcess {
				s.countRejected()
				return nil, services.Wrap(services.ErrValidation, "jobs", "create",
					fmt.Sprintf("%s cannot be processed: %s", path, routing.Reason), nil)
			}
			if routing.RequiresResolve {
				engine = "resolve"
			}
		}
	}

	deliverJSON, err := settings.MarshalJSONString()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "jobs", "create", "encode deliver settings", err)
	}

	job, err := s.store.NewJob(ctx, paths, engine, deliverJSON)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "jobs", "create", "persist job", err)
	}
	if s.metrics != nil {
		s.metrics.JobsCreated.Inc()
	}
	s.updateQueueDepth(ctx)
	return job, nil
}

// Start hands a pending job to the engine.
func (s *JobService) Start(ctx context.Context, jobUUID string) (*queue.Job, error) {
	job, err := s.store.Start(ctx, jobUUID)
	if err != nil {
		return nil, classifyQueueErr("start", err)
	}
	if s.metrics != nil {
		s.metrics.JobsStarted.Inc()
	}
	return job, nil
}

// Cancel flags a job for best-effort cancellation. Terminal jobs pass
// through unchanged; the engine's terminal report always wins.
func (s *JobService) Cancel(ctx context.Context, jobUUID string) (*queue.Job, error) {
	job, err := s.store.RequestCancel(ctx, jobUUID)
	if err != nil {
		return nil, classifyQueueErr("cancel", err)
	}
	return job, nil
}

// ReportStatus applies an engine progress or terminal report.
func (s *JobService) ReportStatus(ctx context.Context, jobUUID string, report StatusReportRequest) (*queue.Job, error) {
	if report.Status == "" {
		if err := s.store.UpdateProgress(ctx, jobUUID, report.ProgressPercent, report.ProgressMessage); err != nil {
			return nil, classifyQueueErr("report progress", err)
		}
		return s.Describe(ctx, jobUUID)
	}

	status, ok := queue.ParseStatus(report.Status)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "jobs", "report status",
			fmt.Sprintf("unknown status %q", report.Status), nil)
	}
	job, err := s.store.Finish(ctx, jobUUID, status, report.ErrorMessage)
	if err != nil {
		return nil, classifyQueueErr("report status", err)
	}
	if s.metrics != nil {
		s.metrics.JobsFinished.WithLabelValues(string(status)).Inc()
	}
	s.updateQueueDepth(ctx)
	return job, nil
}

// Describe fetches one job.
func (s *JobService) Describe(ctx context.Context, jobUUID string) (*queue.Job, error) {
	job, err := s.store.GetByUUID(ctx, jobUUID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "jobs", "describe", "", err)
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "describe", fmt.Sprintf("job %s", jobUUID), nil)
	}
	return job, nil
}

// List returns jobs filtered by status.
func (s *JobService) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "jobs", "list", "", err)
	}
	return jobs, nil
}

// Health aggregates queue counts.
func (s *JobService) Health(ctx context.Context) (queue.HealthSummary, error) {
	return s.store.Health(ctx)
}

// Reset clears the queue.
func (s *JobService) Reset(ctx context.Context) (int64, error) {
	removed, err := s.store.Reset(ctx)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "jobs", "reset", "", err)
	}
	s.updateQueueDepth(ctx)
	return removed, nil
}

func (s *JobService) countRejected() {
	if s.metrics != nil {
		s.metrics.JobsRejected.Inc()
	}
}

func (s *JobService) updateQueueDepth(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if health, err := s.store.Health(ctx); err == nil {
		s.metrics.QueueDepth.Set(float64(health.Pending + health.Running))
	}
}

func classifyQueueErr(operation string, err error) error {
	switch {
	case errors.Is(err, queue.ErrJobNotFound):
		return services.Wrap(services.ErrNotFound, "jobs", operation, "", err)
	case errors.Is(err, queue.ErrIllegalTransition):
		return services.Wrap(services.ErrConflict, "jobs", operation, "", err)
	default:
		return services.Wrap(services.ErrTransient, "jobs", operation, "", err)
	}
}
