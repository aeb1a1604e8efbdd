// Package config handles configuration loading and management for chorus.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for chorus.
type Config struct {
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// AnthropicConfig holds Anthropic API settings for the oracle.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
}

// OrchestratorConfig holds run-level tuning knobs.
type OrchestratorConfig struct {
	RunDeadline        time.Duration `mapstructure:"run_deadline"`
	AgentTimeout       time.Duration `mapstructure:"agent_timeout"`
	ConcurrencyCeiling int           `mapstructure:"concurrency_ceiling"`
	FallbackCap        int           `mapstructure:"fallback_cap"`
	EventBuffer        int           `mapstructure:"event_buffer"`
}

// StorageConfig holds paths for the local sqlite stores.
type StorageConfig struct {
	UsageDB   string `mapstructure:"usage_db"`
	DocsDB    string `mapstructure:"docs_db"`
	RecordsDB string `mapstructure:"records_db"`
}

// LoggingConfig controls the orchestrator debug log.
type LoggingConfig struct {
	// DebugLog is the file the orchestrator appends debug lines to.
	// Empty disables debug logging.
	DebugLog string `mapstructure:"debug_log"`
}

// ToolsConfig holds settings for the built-in tool and files agents.
type ToolsConfig struct {
	// WorkDir is the workspace root for the files agent and the tool
	// agent's working directory. Empty means the current directory.
	WorkDir string `mapstructure:"work_dir"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, CHORUS_*)
// 2. Project config (.chorus.yaml in current directory or parent)
// 3. User config (~/.config/chorus/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config.
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("CHORUS")
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.use_bedrock", "CLAUDE_CODE_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("orchestrator.run_deadline", cfg.Orchestrator.RunDeadline.String())
	v.Set("orchestrator.agent_timeout", cfg.Orchestrator.AgentTimeout.String())
	v.Set("orchestrator.concurrency_ceiling", cfg.Orchestrator.ConcurrencyCeiling)
	v.Set("orchestrator.fallback_cap", cfg.Orchestrator.FallbackCap)
	v.Set("orchestrator.event_buffer", cfg.Orchestrator.EventBuffer)
	v.Set("storage.usage_db", cfg.Storage.UsageDB)
	v.Set("storage.docs_db", cfg.Storage.DocsDB)
	v.Set("storage.records_db", cfg.Storage.RecordsDB)
	v.Set("tools.work_dir", cfg.Tools.WorkDir)
	v.Set("logging.debug_log", cfg.Logging.DebugLog)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")

	v.SetDefault("orchestrator.run_deadline", "60s")
	v.SetDefault("orchestrator.agent_timeout", "30s")
	v.SetDefault("orchestrator.concurrency_ceiling", 5)
	v.SetDefault("orchestrator.fallback_cap", 3)
	v.SetDefault("orchestrator.event_buffer", 100)

	dataDir := getUserDataDir()
	v.SetDefault("storage.usage_db", filepath.Join(dataDir, "usage.db"))
	v.SetDefault("storage.docs_db", filepath.Join(dataDir, "docs.db"))
	v.SetDefault("storage.records_db", filepath.Join(dataDir, "records.db"))

	v.SetDefault("tools.work_dir", "")

	v.SetDefault("logging.debug_log", "")
}

// getUserConfigDir returns the XDG config directory for chorus.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "chorus")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "chorus")
	}
	return filepath.Join(home, ".config", "chorus")
}

// getUserDataDir returns the XDG data directory for chorus.
func getUserDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "chorus")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "chorus")
	}
	return filepath.Join(home, ".local", "share", "chorus")
}

// findProjectConfig searches for .chorus.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".chorus.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	dataDir := getUserDataDir()
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 1024,
		},
		Orchestrator: OrchestratorConfig{
			RunDeadline:        60 * time.Second,
			AgentTimeout:       30 * time.Second,
			ConcurrencyCeiling: 5,
			FallbackCap:        3,
			EventBuffer:        100,
		},
		Storage: StorageConfig{
			UsageDB:   filepath.Join(dataDir, "usage.db"),
			DocsDB:    filepath.Join(dataDir, "docs.db"),
			RecordsDB: filepath.Join(dataDir, "records.db"),
		},
	}
}
