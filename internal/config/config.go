// Package config loads bonuskar configuration from an optional YAML file,
// layered over built-in defaults and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all bonuskar configuration.
type Config struct {
	// Albert Heijn endpoints
	AH AHConfig `yaml:"ah"`

	// Data file locations
	Files FilesConfig `yaml:"files"`

	// Promotion scraper settings
	Scraper ScraperConfig `yaml:"scraper"`

	// LLM bucket generation
	LLM LLMConfig `yaml:"llm"`

	// Cart automation
	Cart CartConfig `yaml:"cart"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AHConfig holds the Albert Heijn site endpoints.
type AHConfig struct {
	BonusURL string `yaml:"bonus_url"`
	BaseURL  string `yaml:"base_url"`
}

// FilesConfig locates the data files relative to the data directory.
type FilesConfig struct {
	History      string `yaml:"history"`
	ProductCache string `yaml:"product_cache"`
	PromptFile   string `yaml:"prompt_file"`
}

// ScraperConfig configures the promotion scraper.
type ScraperConfig struct {
	MaxProducts      int    `yaml:"max_products"`
	RequestTimeout   string `yaml:"request_timeout"`
	CacheExpiryHours int    `yaml:"cache_expiry_hours"`
	Headless         bool   `yaml:"headless"`
}

// LLMConfig configures the bucket-generation LLM client.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // anthropic, gemini
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
}

// CartConfig configures the cart automation browser.
type CartConfig struct {
	// Headful by default so the user can log in and watch the run.
	Headless bool   `yaml:"headless"`
	BaseURL  string `yaml:"base_url"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	Level   string `yaml:"level"` // debug, info, warn, error
	Dir     string `yaml:"dir"`
	Enabled bool   `yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AH: AHConfig{
			BonusURL: "https://www.ah.nl/bonus",
			BaseURL:  "https://www.ah.nl",
		},

		Files: FilesConfig{
			History:      "shopping_history.json",
			ProductCache: "products_cache.json",
			PromptFile:   "prompt.txt",
		},

		Scraper: ScraperConfig{
			MaxProducts:      1000,
			RequestTimeout:   "10s",
			CacheExpiryHours: 6,
			Headless:         true,
		},

		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "claude-3-5-haiku-20241022",
			MaxTokens: 4000,
			Timeout:   "120s",
		},

		Cart: CartConfig{
			Headless: false,
			BaseURL:  "https://www.ah.nl",
		},

		Logging: LoggingConfig{
			Level:   "info",
			Dir:     "logs",
			Enabled: true,
		},
	}
}

// Load loads configuration from a YAML file layered over the defaults.
// A missing file yields pure defaults. A .env file in the working directory
// is read before environment overrides apply.
func Load(path string) (*Config, error) {
	// Best effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides. API keys win
// over file values; the last recognized key also selects the provider.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if file := os.Getenv("BONUSKAR_HISTORY"); file != "" {
		c.Files.History = file
	}
	if dir := os.Getenv("BONUSKAR_LOG_DIR"); dir != "" {
		c.Logging.Dir = dir
	}
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.AH.BonusURL == "" || c.AH.BaseURL == "" {
		return fmt.Errorf("ah urls must not be empty")
	}
	if c.Files.History == "" {
		return fmt.Errorf("history file must not be empty")
	}
	if c.Scraper.MaxProducts <= 0 {
		return fmt.Errorf("scraper max_products must be positive, got %d", c.Scraper.MaxProducts)
	}
	if c.Scraper.CacheExpiryHours <= 0 {
		return fmt.Errorf("scraper cache_expiry_hours must be positive, got %d", c.Scraper.CacheExpiryHours)
	}
	switch c.LLM.Provider {
	case "anthropic", "gemini", "":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// GetRequestTimeout returns the scraper request timeout as a duration.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Scraper.RequestTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetLLMTimeout returns the LLM request timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetCacheExpiry returns the product cache expiry as a duration.
func (c *Config) GetCacheExpiry() time.Duration {
	return time.Duration(c.Scraper.CacheExpiryHours) * time.Hour
}
