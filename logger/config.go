package logger

import "fmt"

// Config represents logging configuration.
type Config struct {
	Level      string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	File       string `mapstructure:"file" yaml:"file"`   // empty disables file output
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
	Console    bool   `mapstructure:"console" yaml:"console"`
}

// DefaultConfig returns a console-only info-level configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Console: true,
	}
}

// SetDefaults fills in zero values and returns the config.
func (cfg *Config) SetDefaults() *Config {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 28
	}
	if cfg.File == "" {
		cfg.Console = true
	}
	return cfg
}

// Validate validates logging configuration.
func (cfg *Config) Validate() error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	if cfg.File == "" && !cfg.Console {
		return fmt.Errorf("logging has no outputs: set file or console")
	}
	return nil
}
