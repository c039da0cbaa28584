package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// EnvAuditMode toggles the audit-mode feature surface. Audit mode exposes
// experimental control endpoints behind an explicit, non-dismissible marker
// in daemon status; default mode omits them entirely.
const EnvAuditMode = "MEDIAPROXY_AUDIT_MODE"

// EnvAPIToken overrides the control API token.
const EnvAPIToken = "MEDIAPROXY_API_TOKEN"

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Engines contains configuration for the external processing tools whose
// availability the capability detector reports.
type Engines struct {
	FFmpegBinary         string `toml:"ffmpeg_binary"`
	FFprobeBinary        string `toml:"ffprobe_binary"`
	ResolveBinary        string `toml:"resolve_binary"`
	ResolveEdition       string `toml:"resolve_edition"`
	ResolveScriptingAddr string `toml:"resolve_scripting_addr"`
	CapabilityTTL        int    `toml:"capability_ttl"`
}

// Preview contains configuration for the preview monitor surface.
type Preview struct {
	// ValidationTimeout bounds how long a source may sit in "awaiting
	// validation" before the surface flags the preflight as stalled.
	ValidationTimeout int `toml:"validation_timeout"`
}

// Deliver contains default delivery settings applied when a job request
// leaves a field empty.
type Deliver struct {
	VideoCodec     string `toml:"video_codec"`
	AudioCodec     string `toml:"audio_codec"`
	Container      string `toml:"container"`
	NamingTemplate string `toml:"naming_template"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediaproxy.
//
// Configuration sections by subsystem:
//   - Paths: directories and control API bind address
//   - Engines: external tool binaries and capability probing
//   - Preview: monitor surface timing
//   - Deliver: delivery setting defaults
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Engines Engines `toml:"engines"`
	Preview Preview `toml:"preview"`
	Deliver Deliver `toml:"deliver"`
	Logging Logging `toml:"logging"`

	// AuditMode is environment driven (EnvAuditMode), never persisted.
	AuditMode bool `toml:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediaproxy/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A .env file in the
// working directory is honored for the environment-driven overrides.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediaproxy.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// OutputDir is created on a best-effort basis so the daemon can run when
// delivery storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
