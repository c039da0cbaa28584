package capabilities

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"mediaproxy/internal/config"
)

// Prober inspects the local machine for the external engines and produces
// capability snapshots for the daemon to serve.
type Prober struct {
	cfg *config.Config

	// runVersion is swapped in tests to avoid executing real binaries.
	runVersion func(ctx context.Context, binary string) (string, error)
	// dialScripting checks the RAW engine's scripting listener.
	dialScripting func(addr string) bool
}

// NewProber builds a prober using the configured engine binaries.
func NewProber(cfg *config.Config) *Prober {
	return &Prober{
		cfg:           cfg,
		runVersion:    runVersionCommand,
		dialScripting: dialScriptingAddr,
	}
}

// Probe evaluates engine availability and returns a complete snapshot.
// The snapshot is built fresh on each call; callers that want caching wrap
// the prober (see Cache).
func (p *Prober) Probe(ctx context.Context) Capabilities {
	snapshot := Capabilities{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		FFmpeg:    p.probeFFmpeg(ctx),
		Resolve:   p.probeResolve(),
	}

	switch {
	case !snapshot.Resolve.Available:
		snapshot.RawRouting = RoutingBlocked
		snapshot.RawRoutingReason = snapshot.Resolve.Reason
	case !snapshot.Resolve.ScriptingAvailable:
		snapshot.RawRouting = RoutingBlocked
		snapshot.RawRoutingReason = "RAW engine scripting interface is not reachable"
	default:
		snapshot.RawRouting = RoutingResolve
	}
	return snapshot
}

func (p *Prober) probeFFmpeg(ctx context.Context) EngineStatus {
	binary := strings.TrimSpace(p.cfg.Engines.FFmpegBinary)
	if binary == "" {
		return EngineStatus{Reason: "ffmpeg binary not configured"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return EngineStatus{Reason: fmt.Sprintf("binary %q not found", binary)}
	}

	status := EngineStatus{Available: true, Path: resolved}
	if version, err := p.runVersion(ctx, resolved); err == nil {
		status.Version = version
	}
	return status
}

func (p *Prober) probeResolve() ResolveStatus {
	status := ResolveStatus{Edition: p.cfg.Engines.ResolveEdition}

	binary := strings.TrimSpace(p.cfg.Engines.ResolveBinary)
	if binary == "" {
		status.Reason = "RAW engine binary not configured"
		return status
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		status.Reason = fmt.Sprintf("binary %q not found", binary)
		return status
	}

	status.Available = true
	status.Path = resolved
	if addr := strings.TrimSpace(p.cfg.Engines.ResolveScriptingAddr); addr != "" {
		status.ScriptingAvailable = p.dialScripting(addr)
		status.Running = status.ScriptingAvailable
	}
	return status
}

func runVersionCommand(ctx context.Context, binary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return "", err
	}
	return parseVersionOutput(string(output)), nil
}

// parseVersionOutput extracts the version token from "ffmpeg version N.n..."
// style banners. An unrecognized banner yields its first line verbatim.
func parseVersionOutput(output string) string {
	line := output
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	fields := strings.Fields(line)
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return line
}

func dialScriptingAddr(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
