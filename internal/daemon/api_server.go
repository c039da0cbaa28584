package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"mediaproxy/internal/api"
	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/config"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/queue"
	"mediaproxy/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.WithComponent(logger, "api-server"),
		daemon: d,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/capabilities", srv.handleCapabilities)
	mux.HandleFunc("/api/routing", srv.handleRouting)
	mux.HandleFunc("/control/jobs/create", authMiddleware(token, srv.handleJobCreate))
	mux.HandleFunc("/control/jobs/", authMiddleware(token, srv.handleJob))
	mux.HandleFunc("/control/queue", authMiddleware(token, srv.handleQueue))
	mux.HandleFunc("/control/queue/reset", authMiddleware(token, srv.handleQueueReset))
	mux.Handle("/metrics", d.metrics.Handler())

	// Experimental surface: registered only in audit mode. Default builds
	// must not even answer these routes.
	if cfg.AuditMode {
		mux.HandleFunc("/control/queue/clear-completed", authMiddleware(token, srv.handleClearCompleted))
		mux.HandleFunc("/api/audit", srv.handleAudit)
		mux.HandleFunc("/api/audit/drop", srv.handleAuditDrop)
		mux.HandleFunc("/api/audit/overlay", srv.handleAuditOverlay)
	}

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handler returns the HTTP handler, for in-process tests.
func (s *apiServer) handler() http.Handler {
	return s.server.Handler
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	health, err := s.daemon.jobs.Health(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		PID:       status.PID,
		AuditMode: status.AuditMode,
		Queue:     api.FromHealth(health),
	})
}

func (s *apiServer) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.metrics.CapabilityRequests.Inc()
	s.writeJSON(w, http.StatusOK, s.daemon.Capabilities(r.Context()))
}

func (s *apiServer) handleRouting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	snapshot := s.daemon.Capabilities(r.Context())
	s.writeJSON(w, http.StatusOK, api.RoutingResponse{
		Path:    path,
		Routing: capabilities.CheckFileRouting(&snapshot, path),
	})
}

func (s *apiServer) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}
	job, err := s.daemon.jobs.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.CreateJobResponse{JobID: job.UUID})
}

// handleJob serves /control/jobs/{uuid} and its start/cancel/status
// actions.
func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/control/jobs/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	jobUUID, action, _ := strings.Cut(rest, "/")
	if jobUUID == "" || strings.Contains(action, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	ctx := r.Context()
	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		job, err := s.daemon.jobs.Describe(ctx, jobUUID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
	case "start":
		s.handleJobAction(w, r, jobUUID, s.daemon.jobs.Start)
	case "cancel":
		s.handleJobAction(w, r, jobUUID, s.daemon.jobs.Cancel)
	case "status":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var report api.StatusReportRequest
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
			return
		}
		job, err := s.daemon.jobs.ReportStatus(ctx, jobUUID, report)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
	default:
		s.writeError(w, http.StatusNotFound, "job not found")
	}
}

func (s *apiServer) handleJobAction(w http.ResponseWriter, r *http.Request, jobUUID string, action func(context.Context, string) (*queue.Job, error)) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	job, err := action(r.Context(), jobUUID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: api.FromJob(job)})
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := queue.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
			return
		}
		statuses = append(statuses, status)
	}
	jobs, err := s.daemon.jobs.List(r.Context(), statuses...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.QueueListResponse{Jobs: api.FromJobs(jobs)})
}

func (s *apiServer) handleQueueReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	removed, err := s.daemon.jobs.Reset(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ResetResponse{Removed: removed})
}

func (s *apiServer) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	removed, err := s.daemon.store.ClearCompleted(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ResetResponse{Removed: removed})
}

func (s *apiServer) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"audit_mode":   true,
		"pid":          status.PID,
		"queue_db":     status.QueueDBPath,
		"lock_file":    status.LockFilePath,
		"bind_address": status.BindAddress,
	})
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)

	var vErr *api.ValidationError
	if errors.As(err, &vErr) {
		s.writeJSON(w, status, api.ValidationErrorResponse{
			Error:  err.Error(),
			Fields: vErr.Fields,
		})
		return
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
