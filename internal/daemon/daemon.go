package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"log/slog"

	"mediaproxy/internal/api"
	"mediaproxy/internal/capabilities"
	"mediaproxy/internal/config"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/metrics"
	"mediaproxy/internal/queue"
)

// Daemon owns the control service's long-lived pieces and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *queue.Store
	caps    *capabilities.Cache
	metrics *metrics.Metrics
	jobs    *api.JobService

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc

	server *apiServer
}

// Status reports daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	AuditMode    bool
	QueueDBPath  string
	LockFilePath string
	BindAddress  string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	logger = logging.WithComponent(logger, "daemon")

	m := metrics.New()
	ttl := time.Duration(cfg.Engines.CapabilityTTL) * time.Second
	cache := capabilities.NewCache(capabilities.NewProber(cfg), ttl)
	cache.SetProbeHook(m.CapabilityProbes.Inc)
	jobs := api.NewJobService(cfg, store, cache, m)

	lockPath := filepath.Join(cfg.Paths.LogDir, "mediaproxyd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		caps:     cache,
		metrics:  m,
		jobs:     jobs,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and brings up the control API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediaproxy daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.server.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.Bool("audit_mode", d.cfg.AuditMode))
	return nil
}

// Stop shuts the control API down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes its store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Jobs exposes the job service, primarily for tests.
func (d *Daemon) Jobs() *api.JobService {
	return d.jobs
}

// Capabilities returns the current capability snapshot.
func (d *Daemon) Capabilities(ctx context.Context) capabilities.Capabilities {
	return d.caps.Get(ctx)
}

// Addr returns the control API's listen address once started.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Status returns current daemon runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		AuditMode:    d.cfg.AuditMode,
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		BindAddress:  d.Addr(),
	}
}
