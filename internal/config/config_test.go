package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaproxy/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for %s", path)
	}
	if cfg.Engines.FFmpegBinary != "ffmpeg" {
		t.Errorf("expected default ffmpeg binary, got %q", cfg.Engines.FFmpegBinary)
	}
	if cfg.Deliver.Container != "mp4" {
		t.Errorf("expected default container mp4, got %q", cfg.Deliver.Container)
	}
	if cfg.Preview.ValidationTimeout <= 0 {
		t.Errorf("expected positive validation timeout, got %d", cfg.Preview.ValidationTimeout)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = " 127.0.0.1:9999 "

[engines]
resolve_edition = "STUDIO"

[deliver]
video_codec = " HEVC "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Errorf("api_bind not trimmed: %q", cfg.Paths.APIBind)
	}
	if cfg.Engines.ResolveEdition != "studio" {
		t.Errorf("resolve_edition not normalized: %q", cfg.Engines.ResolveEdition)
	}
	if cfg.Deliver.VideoCodec != "hevc" {
		t.Errorf("deliver.video_codec not normalized: %q", cfg.Deliver.VideoCodec)
	}
}

func TestLoadRejectsInvalidEdition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[engines]
resolve_edition = "enterprise"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for unknown edition")
	}
	if !strings.Contains(err.Error(), "resolve_edition") {
		t.Fatalf("error should name the offending field, got: %v", err)
	}
}

func TestAuditModeFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvAuditMode, "true")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.AuditMode {
		t.Fatal("expected audit mode enabled via environment")
	}

	t.Setenv(config.EnvAuditMode, "0")
	cfg, _, _, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AuditMode {
		t.Fatal("expected audit mode disabled")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[engines]") {
		t.Fatal("sample config missing engines section")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	expanded, err := config.ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if expanded != filepath.Join(home, "x") {
		t.Fatalf("expected %s, got %s", filepath.Join(home, "x"), expanded)
	}
}
