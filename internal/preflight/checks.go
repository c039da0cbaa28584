package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mediaproxy/internal/config"
)

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinaries evaluates the external engine binaries. The RAW engine is
// optional at preflight: its absence degrades RAW routing rather than
// blocking startup, so a missing binary still reports Passed.
func CheckBinaries(cfg *config.Config) []Result {
	results := []Result{
		checkBinary("FFmpeg", cfg.Engines.FFmpegBinary, false),
		checkBinary("FFprobe", cfg.Engines.FFprobeBinary, false),
	}
	if strings.TrimSpace(cfg.Engines.ResolveBinary) != "" {
		results = append(results, checkBinary("DaVinci Resolve", cfg.Engines.ResolveBinary, true))
	}
	return results
}

func checkBinary(name, command string, optional bool) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Passed: optional, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Passed: optional, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDaemon probes the control API's liveness endpoint.
func CheckDaemon(ctx context.Context, bind string) Result {
	const name = "Control daemon"

	bind = strings.TrimSpace(bind)
	if bind == "" {
		return Result{Name: name, Detail: "api bind not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, "http://"+bind+"/health", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health probe failed (%v)", err)}
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: "not running"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("health probe returned %d", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "running"}
}
