package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the scraper. Session
// cookies are deliberately absent; they live in the credential store
// managed by pkg/auth.
type Config struct {
	// Browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Feed collection settings
	Collector CollectorConfig `yaml:"collector" json:"collector"`

	// Multi-author run settings
	Orchestrator OrchestratorConfig `yaml:"orchestrator" json:"orchestrator"`

	// Image materialization settings
	Images ImagesConfig `yaml:"images" json:"images"`

	// Report and result output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig holds browser launch and navigation settings. ControlURL
// attaches to an already running Chrome instead of launching one.
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	Stealth           bool          `yaml:"stealth" json:"stealth"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	ControlURL        string        `yaml:"control_url" json:"control_url"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	BlockResources    []string      `yaml:"block_resources" json:"block_resources"`
}

// CollectorConfig holds per-feed collection settings
type CollectorConfig struct {
	MaxRounds    int           `yaml:"max_rounds" json:"max_rounds"`
	ReadyTimeout time.Duration `yaml:"ready_timeout" json:"ready_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay" json:"settle_delay"`
}

// OrchestratorConfig holds fan-out and retry settings
type OrchestratorConfig struct {
	Concurrency    int           `yaml:"concurrency" json:"concurrency"`
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" json:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay" json:"retry_max_delay"`
}

// ImagesConfig holds image materialization settings
type ImagesConfig struct {
	Enabled        bool          `yaml:"enabled" json:"enabled"`
	Directory      string        `yaml:"directory" json:"directory"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	PacingInterval time.Duration `yaml:"pacing_interval" json:"pacing_interval"`
}

// OutputConfig holds collection report settings. Per-author results are
// written under Directory; the run report lands at Directory/ReportFile.
type OutputConfig struct {
	Directory  string `yaml:"directory" json:"directory"`
	ReportFile string `yaml:"report_file" json:"report_file"`
}

// LoggingConfig holds log level and optional file output
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns the configuration a flagless run uses
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:          true,
			Stealth:           true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			BaseURL:           "https://x.com",
			NavigationTimeout: 60 * time.Second,
			BlockResources:    []string{"fonts", "media"},
		},
		Collector: CollectorConfig{
			MaxRounds:    100,
			ReadyTimeout: 15 * time.Second,
			SettleDelay:  2 * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			Concurrency:    4,
			MaxAttempts:    3,
			RetryBaseDelay: 2 * time.Second,
			RetryMaxDelay:  30 * time.Second,
		},
		Images: ImagesConfig{
			Enabled:        false,
			Directory:      "./downloads",
			FetchTimeout:   30 * time.Second,
			PacingInterval: 500 * time.Millisecond,
		},
		Output: OutputConfig{
			Directory:  "./output",
			ReportFile: "report.json",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv applies XSCRAPER_* environment overrides in place.
// Malformed values are ignored and the existing value stays.
func (c *Config) LoadFromEnv() error {
	if headless := os.Getenv("XSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if userAgent := os.Getenv("XSCRAPER_USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}
	if baseURL := os.Getenv("XSCRAPER_BASE_URL"); baseURL != "" {
		c.Browser.BaseURL = baseURL
	}
	if controlURL := os.Getenv("XSCRAPER_CONTROL_URL"); controlURL != "" {
		c.Browser.ControlURL = controlURL
	}
	if timeout := os.Getenv("XSCRAPER_NAVIGATION_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			c.Browser.NavigationTimeout = d
		}
	}

	if rounds := os.Getenv("XSCRAPER_MAX_ROUNDS"); rounds != "" {
		var val int
		fmt.Sscanf(rounds, "%d", &val)
		if val > 0 {
			c.Collector.MaxRounds = val
		}
	}
	if ready := os.Getenv("XSCRAPER_READY_TIMEOUT"); ready != "" {
		if d, err := time.ParseDuration(ready); err == nil && d > 0 {
			c.Collector.ReadyTimeout = d
		}
	}
	if settle := os.Getenv("XSCRAPER_SETTLE_DELAY"); settle != "" {
		if d, err := time.ParseDuration(settle); err == nil && d >= 0 {
			c.Collector.SettleDelay = d
		}
	}

	if concurrency := os.Getenv("XSCRAPER_CONCURRENCY"); concurrency != "" {
		var val int
		fmt.Sscanf(concurrency, "%d", &val)
		if val > 0 {
			c.Orchestrator.Concurrency = val
		}
	}
	if attempts := os.Getenv("XSCRAPER_MAX_ATTEMPTS"); attempts != "" {
		var val int
		fmt.Sscanf(attempts, "%d", &val)
		if val > 0 {
			c.Orchestrator.MaxAttempts = val
		}
	}

	if enabled := os.Getenv("XSCRAPER_IMAGES_ENABLED"); enabled != "" {
		c.Images.Enabled = strings.ToLower(enabled) == "true"
	}
	if dir := os.Getenv("XSCRAPER_IMAGES_DIR"); dir != "" {
		c.Images.Directory = dir
	}
	if fetchTimeout := os.Getenv("XSCRAPER_FETCH_TIMEOUT"); fetchTimeout != "" {
		if d, err := time.ParseDuration(fetchTimeout); err == nil && d > 0 {
			c.Images.FetchTimeout = d
		}
	}

	if outputDir := os.Getenv("XSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if report := os.Getenv("XSCRAPER_REPORT_FILE"); report != "" {
		c.Output.ReportFile = report
	}

	if logLevel := os.Getenv("XSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile merges a YAML file over the receiver
func (c *Config) LoadFromFile(path string) error {
	// An empty path means "use a default location when one exists"
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile probes the default config locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xscraper.yaml",
		".xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".xscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Browser.BaseURL == "" {
		errs = append(errs, errors.New("browser base URL is required"))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}

	if c.Collector.MaxRounds <= 0 {
		errs = append(errs, errors.New("max rounds must be positive"))
	}
	if c.Collector.ReadyTimeout <= 0 {
		errs = append(errs, errors.New("ready timeout must be positive"))
	}
	if c.Collector.SettleDelay < 0 {
		errs = append(errs, errors.New("settle delay cannot be negative"))
	}

	if c.Orchestrator.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Orchestrator.Concurrency > 16 {
		errs = append(errs, errors.New("concurrency should not exceed 16"))
	}
	if c.Orchestrator.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}

	if c.Images.Enabled {
		if c.Images.Directory == "" {
			errs = append(errs, errors.New("images directory is required when images are enabled"))
		}
		if c.Images.FetchTimeout <= 0 {
			errs = append(errs, errors.New("image fetch timeout must be positive"))
		}
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.ReportFile == "" {
		errs = append(errs, errors.New("report file is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags applies the CLI flag values that were set
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Directory = output
	}
	if report, ok := flags["report-file"].(string); ok && report != "" {
		c.Output.ReportFile = report
	}
	if imagesDir, ok := flags["images-dir"].(string); ok && imagesDir != "" {
		c.Images.Directory = imagesDir
	}
	if images, ok := flags["images"].(bool); ok && images {
		c.Images.Enabled = true
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Orchestrator.Concurrency = concurrency
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		c.Orchestrator.MaxAttempts = attempts
	}
	if headful, ok := flags["headful"].(bool); ok && headful {
		c.Browser.Headless = false
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load assembles the effective configuration. Precedence, highest
// first: CLI flags, environment variables, .env files, config file,
// defaults.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional; missing ones are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
