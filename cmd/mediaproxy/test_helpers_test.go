package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaproxy/internal/config"
	"mediaproxy/internal/daemon"
	"mediaproxy/internal/logging"
	"mediaproxy/internal/queue"
	"mediaproxy/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	daemon     *daemon.Daemon
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg, d.Addr())

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		d.Stop()
		cancel()
	})

	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config, apiBind string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstaging_dir = %q\noutput_dir = %q\nlog_dir = %q\napi_bind = %q\n",
		cfg.Paths.StagingDir,
		cfg.Paths.OutputDir,
		cfg.Paths.LogDir,
		apiBind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func seedJob(t *testing.T, env *cliTestEnv, sourcePaths []string) *queue.Job {
	t.Helper()
	return testsupport.NewJob(t, env.store, sourcePaths, "ffmpeg")
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
