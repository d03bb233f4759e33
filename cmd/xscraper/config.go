package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"xscraper/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage xscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with the common options.

The file will be created in the current directory as 'xscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Session cookies never appear here; they live in the credential store.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "xscraper.yaml"
	}

	// Never clobber an existing config
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintln(os.Stderr, "Configuration file already exists:", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# xscraper Configuration File
#
# This file contains the common configuration options.
# You can also use environment variables prefixed with XSCRAPER_
# For example: XSCRAPER_HEADLESS, XSCRAPER_OUTPUT_DIR
#
# Session cookies are NOT configured here. Store them with
# 'xscraper auth login', or set XSCRAPER_AUTH_TOKEN and
# XSCRAPER_CSRF_TOKEN for scripted runs.
#
# Timing knobs (navigation timeout, feed settle delay, image fetch
# timeout) are tuned through environment variables using Go duration
# syntax, for example:
#   XSCRAPER_NAVIGATION_TIMEOUT=90s
#   XSCRAPER_READY_TIMEOUT=20s
#   XSCRAPER_SETTLE_DELAY=3s
#   XSCRAPER_FETCH_TIMEOUT=45s

# Browser configuration
browser:
  # Run without a visible window
  headless: true

  # Apply fingerprint evasion to feed pages
  stealth: true

  # Browser identity presented to the site
  # Leave empty to use the stored account's user agent
  user_agent: ""

  # Site to collect from
  base_url: "https://x.com"

  # DevTools websocket URL of an already running Chrome
  # Leave empty to launch a managed browser
  control_url: ""

  # Resource types dropped before they load: fonts, media, images, stylesheets
  block_resources:
    - fonts
    - media

# Feed collection configuration
collector:
  # Pagination rounds per feed before giving up
  # Range: 1-1000
  max_rounds: 100

# Multi-author run configuration
orchestrator:
  # Feeds collected in parallel
  # Range: 1-16
  concurrency: 4

  # Collection attempts per author before giving up
  # Range: 1-10
  max_attempts: 3

# Image materialization configuration
images:
  # Download post images to local disk
  enabled: false

  # Destination directory for downloaded images
  directory: "./downloads"

# Output configuration
output:
  # Directory for per-author results and the run report
  directory: "./output"

  # Run report file name inside the output directory
  report_file: "report.json"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create configuration file:", err)
		os.Exit(1)
	}

	fmt.Println("Configuration file created:", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store your X session cookies with 'xscraper auth login'")
	fmt.Println("2. Run 'xscraper config validate' to check the configuration")
	fmt.Println("3. Start collecting with 'xscraper scrape <handle>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	// Durations print as nanosecond integers; cookies are not part of
	// the configuration at all.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to format configuration:", err)
		os.Exit(1)
	}

	fmt.Println("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (XSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		configFile = findNearbyConfig()
		if configFile == "" {
			fmt.Fprintln(os.Stderr, "No configuration file found. Specify a file with --config flag.")
			os.Exit(1)
		}
	}

	fmt.Println("Validating configuration:", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Configuration validation failed:", err)
		os.Exit(1)
	}

	// Checks beyond config.Validate: writable paths and values a run
	// would accept but a reviewer should look at
	var warnings, errors []string

	checkDir := func(label, dir string) {
		if dir == "" {
			return
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create %s directory: %v", label, err))
		}
	}
	checkDir("output", cfg.Output.Directory)
	if cfg.Images.Enabled {
		checkDir("images", cfg.Images.Directory)
	}
	if cfg.Logging.File != "" {
		checkDir("log", filepath.Dir(cfg.Logging.File))
	}

	if cfg.Orchestrator.Concurrency > 8 {
		warnings = append(warnings, "concurrency above 8 opens many browser tabs at once")
	}
	if cfg.Collector.MaxRounds > 1000 {
		errors = append(errors, "max_rounds must not exceed 1000")
	}
	if cfg.Orchestrator.MaxAttempts > 10 {
		errors = append(errors, "max_attempts must not exceed 10")
	}

	if len(errors) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration has errors:")
		for _, err := range errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		fmt.Println("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	fmt.Println("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Base URL: %s\n", cfg.Browser.BaseURL)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Concurrency: %d\n", cfg.Orchestrator.Concurrency)
	fmt.Printf("  Max attempts: %d\n", cfg.Orchestrator.MaxAttempts)
	fmt.Printf("  Images enabled: %v\n", cfg.Images.Enabled)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

// findNearbyConfig probes the usual config locations and returns the
// first hit, or empty when none exists
func findNearbyConfig() string {
	candidates := []string{
		"xscraper.yaml",
		"xscraper.yml",
		".xscraper.yaml",
		".xscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".xscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xscraper", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
