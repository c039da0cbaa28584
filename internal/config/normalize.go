package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEngines()
	c.normalizePreview()
	c.normalizeDeliver()
	c.normalizeLogging()
	c.normalizeEnvironment()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeEngines() {
	c.Engines.FFmpegBinary = strings.TrimSpace(c.Engines.FFmpegBinary)
	if c.Engines.FFmpegBinary == "" {
		c.Engines.FFmpegBinary = defaultFFmpegBinary
	}
	c.Engines.FFprobeBinary = strings.TrimSpace(c.Engines.FFprobeBinary)
	if c.Engines.FFprobeBinary == "" {
		c.Engines.FFprobeBinary = defaultFFprobeBinary
	}
	c.Engines.ResolveBinary = strings.TrimSpace(c.Engines.ResolveBinary)
	c.Engines.ResolveEdition = strings.ToLower(strings.TrimSpace(c.Engines.ResolveEdition))
	c.Engines.ResolveScriptingAddr = strings.TrimSpace(c.Engines.ResolveScriptingAddr)
	if c.Engines.ResolveScriptingAddr == "" {
		c.Engines.ResolveScriptingAddr = defaultResolveScriptingAddr
	}
	if c.Engines.CapabilityTTL <= 0 {
		c.Engines.CapabilityTTL = defaultCapabilityTTL
	}
}

func (c *Config) normalizePreview() {
	if c.Preview.ValidationTimeout <= 0 {
		c.Preview.ValidationTimeout = defaultValidationTimeout
	}
}

func (c *Config) normalizeDeliver() {
	c.Deliver.VideoCodec = strings.ToLower(strings.TrimSpace(c.Deliver.VideoCodec))
	if c.Deliver.VideoCodec == "" {
		c.Deliver.VideoCodec = defaultDeliverVideoCodec
	}
	c.Deliver.AudioCodec = strings.ToLower(strings.TrimSpace(c.Deliver.AudioCodec))
	if c.Deliver.AudioCodec == "" {
		c.Deliver.AudioCodec = defaultDeliverAudioCodec
	}
	c.Deliver.Container = strings.ToLower(strings.TrimSpace(c.Deliver.Container))
	if c.Deliver.Container == "" {
		c.Deliver.Container = defaultDeliverContainer
	}
	c.Deliver.NamingTemplate = strings.TrimSpace(c.Deliver.NamingTemplate)
	if c.Deliver.NamingTemplate == "" {
		c.Deliver.NamingTemplate = defaultNamingTemplate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeEnvironment() {
	if value, ok := os.LookupEnv(EnvAuditMode); ok {
		c.AuditMode = isTruthy(value)
	}
	if value, ok := os.LookupEnv(EnvAPIToken); ok {
		c.Paths.APIToken = strings.TrimSpace(value)
	}
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
