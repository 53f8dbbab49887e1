// Package config loads the harness configuration from file, environment,
// and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/camel-ai/terminus/logger"
)

// Config is the root configuration for the harness.
type Config struct {
	Model     ModelConfig     `mapstructure:"model"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Developer DeveloperConfig `mapstructure:"developer"`
	Log       logger.Config   `mapstructure:"log"`
}

// ModelConfig selects and tunes the model backend.
type ModelConfig struct {
	Platform    string  `mapstructure:"platform" validate:"required,oneof=openai anthropic"`
	Name        string  `mapstructure:"name"`
	APIKey      string  `mapstructure:"api_key"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gte=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// AgentConfig tunes the command-batch episode loop.
type AgentConfig struct {
	MaxEpisodes  int    `mapstructure:"max_episodes" validate:"gt=0"`
	Attempts     int    `mapstructure:"attempts" validate:"gt=0"`
	SummaryPath  string `mapstructure:"summary_path"`
	PaneMaxChars int    `mapstructure:"pane_max_chars" validate:"gte=0"`
	PaneMaxLines int    `mapstructure:"pane_max_lines" validate:"gte=0"`
	RepeatWindow int    `mapstructure:"repeat_window" validate:"gte=0"`
}

// DeveloperConfig tunes the tool-calling developer agent.
type DeveloperConfig struct {
	WorkingDir        string  `mapstructure:"working_dir"`
	InContainer       bool    `mapstructure:"in_container"`
	MaxToolTurns      int     `mapstructure:"max_tool_turns" validate:"gt=0"`
	CommandTimeoutSec float64 `mapstructure:"command_timeout_sec" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from the given file (optional), the environment
// (TERMINUS_ prefix), and built-in defaults, in increasing precedence of
// environment over file over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TERMINUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.platform", "openai")
	v.SetDefault("model.name", "")
	v.SetDefault("model.max_tokens", 4096)
	v.SetDefault("model.temperature", 0.7)

	v.SetDefault("agent.max_episodes", 50)
	v.SetDefault("agent.attempts", 3)
	v.SetDefault("agent.summary_path", ".terminus/TERMINUS.md")
	v.SetDefault("agent.pane_max_chars", 20000)
	v.SetDefault("agent.pane_max_lines", 256)
	v.SetDefault("agent.repeat_window", 6)

	v.SetDefault("developer.working_dir", ".terminus/workdir")
	v.SetDefault("developer.in_container", false)
	v.SetDefault("developer.max_tool_turns", 50)
	v.SetDefault("developer.command_timeout_sec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
}
