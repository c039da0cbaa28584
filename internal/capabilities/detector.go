package capabilities

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"log/slog"

	"mediaproxy/internal/logging"
)

// Detector fetches capability snapshots over HTTP and answers routing
// questions against the most recent successful fetch.
//
// The detector is an explicit store with its own lifecycle: construct it,
// call Refresh to populate it, and pass it to whoever needs routing
// decisions. All state lives on the struct so independent detectors can
// coexist in tests.
type Detector struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	snapshot *Capabilities
	loaded   bool
	loading  int
	lastErr  string
	// issued increments per Refresh call; a response is applied only when
	// its sequence number is still the latest issued, so a slow older fetch
	// can never clobber a newer snapshot.
	issued uint64
}

// NewDetector builds a detector targeting the given daemon bind address.
func NewDetector(bind string, logger *slog.Logger) (*Detector, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, fmt.Errorf("capability endpoint bind is empty")
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse capability endpoint: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""

	return &Detector{
		base:   base,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logging.WithComponent(logger, "capabilities"),
	}, nil
}

// Refresh fetches a fresh snapshot. It is idempotent and safe to call
// concurrently; when calls overlap, only the most recently issued request
// may update the stored snapshot. A failed fetch records the error and
// leaves the previous snapshot untouched.
func (d *Detector) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.issued++
	seq := d.issued
	d.loading++
	d.mu.Unlock()

	snapshot, err := d.fetch(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading--

	if seq != d.issued {
		// A newer refresh was issued while this one was in flight.
		return err
	}

	if err != nil {
		d.lastErr = err.Error()
		d.logger.Warn("capability fetch failed", logging.Error(err))
		return err
	}

	d.snapshot = snapshot
	d.loaded = true
	d.lastErr = ""
	return nil
}

func (d *Detector) fetch(ctx context.Context) (*Capabilities, error) {
	endpoint := d.base.ResolveReference(&url.URL{Path: "/api/capabilities"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("capabilities endpoint returned status %d", resp.StatusCode)
	}

	var payload Capabilities
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode capabilities: %w", err)
	}
	return &payload, nil
}

// Loaded reports whether at least one fetch has succeeded.
func (d *Detector) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Loading reports whether a fetch is currently in flight.
func (d *Detector) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading > 0
}

// Err returns the message from the most recent failed fetch, or "" when the
// last fetch succeeded.
func (d *Detector) Err() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Snapshot returns a copy of the last successful snapshot. The second
// return value is false when no fetch has succeeded yet.
func (d *Detector) Snapshot() (Capabilities, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snapshot == nil {
		return Capabilities{}, false
	}
	return *d.snapshot, true
}

// FFmpegAvailable reports whether the transcode engine was detected.
func (d *Detector) FFmpegAvailable() bool {
	snapshot, ok := d.Snapshot()
	return ok && snapshot.FFmpeg.Available
}

// ResolveAvailable reports whether the RAW-capable engine was detected.
func (d *Detector) ResolveAvailable() bool {
	snapshot, ok := d.Snapshot()
	return ok && snapshot.Resolve.Available
}

// CheckFileRouting decides how the given file routes under the current
// snapshot. The decision is recomputed on every call; nothing is cached per
// file, so a capability change immediately changes routing.
func (d *Detector) CheckFileRouting(path string) Routing {
	d.mu.Lock()
	snapshot := d.snapshot
	d.mu.Unlock()
	return CheckFileRouting(snapshot, path)
}
