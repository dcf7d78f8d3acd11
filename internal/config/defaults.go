package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			TimeoutSeconds:   8,
			DiscoveryTimeout: 5,
		},
		Tail: TailConfig{
			ShowEmoji: true,
		},
		TUI: TUIConfig{
			Theme:      "auto",
			VolumeStep: 5,
			SeekStep:   10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = d.Server.TimeoutSeconds
	}
	if c.Server.DiscoveryTimeout == 0 {
		c.Server.DiscoveryTimeout = d.Server.DiscoveryTimeout
	}

	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.VolumeStep == 0 {
		c.TUI.VolumeStep = d.TUI.VolumeStep
	}
	if c.TUI.SeekStep == 0 {
		c.TUI.SeekStep = d.TUI.SeekStep
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
