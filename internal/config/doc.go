// Package config loads, normalizes, and validates the mediaproxy TOML
// configuration. Environment overrides (including an optional .env file) are
// applied during normalization; the audit-mode feature flag is environment
// driven only and never read from the config file.
package config
