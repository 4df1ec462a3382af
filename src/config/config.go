package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from a YAML file.
// Secrets (advisor key, webhook URL/secret) come from the environment; a .env
// file next to the process is honored if present.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Overlay environment secrets (.env is optional)
	_ = godotenv.Load()
	config.Advisor.APIKey = os.Getenv("KIMI_API_KEY")
	config.Notifier.WebhookURL = os.Getenv("FEISHU_WEBHOOK_URL")
	config.Notifier.Secret = os.Getenv("FEISHU_SECRET")

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs startup-time configuration validation.
// These are the only fatal errors; nothing here can fail mid-loop.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Monitor configuration
	if c.Monitor.IntervalSeconds <= 0 {
		return fmt.Errorf("monitor interval must be greater than 0")
	}
	if c.Monitor.HistoryLen <= 0 {
		return fmt.Errorf("history length must be greater than 0")
	}
	if len(c.Monitor.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	for i, sym := range c.Monitor.Symbols {
		if err := ValidateSymbol(sym); err != nil {
			return fmt.Errorf("symbol %d: %w", i, err)
		}
	}
	if c.Monitor.StatsWindowMins <= 0 {
		c.Monitor.StatsWindowMins = 30
	}

	// Model thresholds: a breakout threshold below the collapse threshold is
	// a misconfiguration that would make every tick fire.
	if c.Models.RiseSpeedThreshold <= c.Models.DropSpeedThreshold {
		return fmt.Errorf("rise_speed_threshold must exceed drop_speed_threshold")
	}
	if c.Models.VolRatioThreshold <= 0 {
		return fmt.Errorf("vol_ratio_threshold must be greater than 0")
	}
	// The quote feed carries no money-flow figure yet, so a non-positive
	// inflow threshold would trip the quiet-accumulation model on every
	// flat symbol.
	if c.Models.NetInflowThreshold <= 0 {
		return fmt.Errorf("net_inflow_threshold must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// ValidateSymbol checks an A-share exchange code (6 digits).
func ValidateSymbol(sym string) error {
	if len(sym) != 6 {
		return fmt.Errorf("malformed symbol %q: want 6 digits", sym)
	}
	if strings.Trim(sym, "0123456789") != "" {
		return fmt.Errorf("malformed symbol %q: non-digit characters", sym)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
