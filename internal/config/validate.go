package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks ServerConfig for errors.
func (c *ServerConfig) Validate() error {
	if c.Address != "" {
		if _, err := url.Parse(c.Address); err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds must be non-negative")
	}
	if c.DiscoveryTimeout < 0 {
		return errors.New("discovery_timeout must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.VolumeStep < 0 || c.VolumeStep > 100 {
		return errors.New("volume_step must be between 0 and 100")
	}
	if c.SeekStep < 0 {
		return errors.New("seek_step must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
