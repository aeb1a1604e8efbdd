package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvasey/chorus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify chorus configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/chorus/config.yaml
Project-specific overrides can be placed in .chorus.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetUserConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("write starter config: %w", err)
		}
		fmt.Printf("Wrote starter config to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.max_tokens: %d\n", cfg.Anthropic.MaxTokens)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("orchestrator.run_deadline: %s\n", cfg.Orchestrator.RunDeadline)
	fmt.Printf("orchestrator.agent_timeout: %s\n", cfg.Orchestrator.AgentTimeout)
	fmt.Printf("orchestrator.concurrency_ceiling: %d\n", cfg.Orchestrator.ConcurrencyCeiling)
	fmt.Printf("orchestrator.fallback_cap: %d\n", cfg.Orchestrator.FallbackCap)
	fmt.Printf("storage.usage_db: %s\n", cfg.Storage.UsageDB)
	fmt.Printf("storage.docs_db: %s\n", cfg.Storage.DocsDB)
	fmt.Printf("storage.records_db: %s\n", cfg.Storage.RecordsDB)
	fmt.Printf("tools.work_dir: %s\n", cfg.Tools.WorkDir)
	fmt.Printf("logging.debug_log: %s\n", cfg.Logging.DebugLog)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.max_tokens":
		return strconv.Itoa(cfg.Anthropic.MaxTokens), nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "orchestrator.run_deadline":
		return cfg.Orchestrator.RunDeadline.String(), nil
	case "orchestrator.agent_timeout":
		return cfg.Orchestrator.AgentTimeout.String(), nil
	case "orchestrator.concurrency_ceiling":
		return strconv.Itoa(cfg.Orchestrator.ConcurrencyCeiling), nil
	case "orchestrator.fallback_cap":
		return strconv.Itoa(cfg.Orchestrator.FallbackCap), nil
	case "storage.usage_db":
		return cfg.Storage.UsageDB, nil
	case "storage.docs_db":
		return cfg.Storage.DocsDB, nil
	case "storage.records_db":
		return cfg.Storage.RecordsDB, nil
	case "tools.work_dir":
		return cfg.Tools.WorkDir, nil
	case "logging.debug_log":
		return cfg.Logging.DebugLog, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_tokens: %w", err)
		}
		cfg.Anthropic.MaxTokens = n
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_bedrock: %w", err)
		}
		cfg.Anthropic.UseBedrock = b
	case "orchestrator.run_deadline":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for run_deadline: %w", err)
		}
		cfg.Orchestrator.RunDeadline = d
	case "orchestrator.agent_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for agent_timeout: %w", err)
		}
		cfg.Orchestrator.AgentTimeout = d
	case "orchestrator.concurrency_ceiling":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for concurrency_ceiling: %w", err)
		}
		cfg.Orchestrator.ConcurrencyCeiling = n
	case "orchestrator.fallback_cap":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for fallback_cap: %w", err)
		}
		cfg.Orchestrator.FallbackCap = n
	case "storage.usage_db":
		cfg.Storage.UsageDB = value
	case "storage.docs_db":
		cfg.Storage.DocsDB = value
	case "storage.records_db":
		cfg.Storage.RecordsDB = value
	case "tools.work_dir":
		cfg.Tools.WorkDir = value
	case "logging.debug_log":
		cfg.Logging.DebugLog = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
