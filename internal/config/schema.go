package config

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `toml:"server"`
	Device DeviceConfig `toml:"device"`
	Tail   TailConfig   `toml:"tail"`
	TUI    TUIConfig    `toml:"tui"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig holds connection settings for the Apple Music Remote server.
type ServerConfig struct {
	Address          string `toml:"address"`
	Token            string `toml:"token"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	DiscoveryTimeout int    `toml:"discovery_timeout"`
}

// DeviceConfig identifies this client to the server's trusted device
// list. The fingerprint is generated once and kept stable.
type DeviceConfig struct {
	Name        string `toml:"name"`
	Fingerprint string `toml:"fingerprint"`
}

// TailConfig holds settings for tail/follow mode.
type TailConfig struct {
	ShowEmoji     bool   `toml:"emoji"`
	ShowTimestamp bool   `toml:"timestamp"`
	Format        string `toml:"format"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme      string `toml:"theme"`
	VolumeStep int    `toml:"volume_step"`
	SeekStep   int    `toml:"seek_step"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
