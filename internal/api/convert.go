package api

import "mediaproxy/internal/queue"

// FromJob projects a stored job into its API view.
func FromJob(job *queue.Job) JobView {
	if job == nil {
		return JobView{}
	}
	return JobView{
		ID:              job.ID,
		UUID:            job.UUID,
		SourcePaths:     job.SourcePaths(),
		Engine:          job.Engine,
		Status:          string(job.Status),
		ErrorMessage:    job.ErrorMessage,
		ProgressPercent: job.ProgressPercent,
		ProgressMessage: job.ProgressMessage,
		CancelRequested: job.CancelRequested,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
		StartedAt:       job.StartedAt,
		FinishedAt:      job.FinishedAt,
	}
}

// FromJobs projects a job list.
func FromJobs(jobs []*queue.Job) []JobView {
	if len(jobs) == 0 {
		return nil
	}
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(job))
	}
	return views
}

// FromHealth projects queue health counts.
func FromHealth(health queue.HealthSummary) Queue {
	return Queue{
		Total:     health.Total,
		Pending:   health.Pending,
		Running:   health.Running,
		Completed: health.Completed,
		Failed:    health.Failed,
		Cancelled: health.Cancelled,
	}
}
