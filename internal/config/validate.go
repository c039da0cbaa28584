package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEngines(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validateDeliver(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateEngines() error {
	if strings.TrimSpace(c.Engines.FFmpegBinary) == "" {
		return errors.New("engines.ffmpeg_binary must be set")
	}
	if strings.TrimSpace(c.Engines.FFprobeBinary) == "" {
		return errors.New("engines.ffprobe_binary must be set")
	}
	switch c.Engines.ResolveEdition {
	case "", "free", "studio", "unknown":
	default:
		return fmt.Errorf("engines.resolve_edition must be one of free, studio, unknown (got %q)", c.Engines.ResolveEdition)
	}
	if c.Engines.CapabilityTTL <= 0 {
		return errors.New("engines.capability_ttl must be positive (seconds)")
	}
	return nil
}

func (c *Config) validatePreview() error {
	if c.Preview.ValidationTimeout <= 0 {
		return errors.New("preview.validation_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateDeliver() error {
	if strings.TrimSpace(c.Deliver.NamingTemplate) == "" {
		return errors.New("deliver.naming_template must be set")
	}
	return nil
}
