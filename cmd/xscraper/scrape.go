package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"xscraper/pkg/auth"
	"xscraper/pkg/browser"
	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/scrape"
)

var (
	sinceSpec   string
	outputDir   string
	reportFile  string
	withImages  bool
	imagesDir   string
	concurrency int
	maxAttempts int
	headful     bool
	accountName string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <handle> [handle...]",
	Short: "Collect recent posts from author feeds",
	Long: `Collect every post published at or after the start boundary from each
author's feed and write a JSON report.

This command requires a valid X session to be configured either through:
  - Stored credentials (use 'xscraper auth login' to store)
  - Environment variables (XSCRAPER_AUTH_TOKEN and XSCRAPER_CSRF_TOKEN)

The --since value accepts a duration relative to now (24h, 90m), an
RFC3339 timestamp, or a plain date meaning midnight UTC (2026-01-10).`,
	Example: `  # Posts from the last 24 hours for two authors
  xscraper scrape nasa spacex

  # Posts since a fixed instant, with images saved locally
  xscraper scrape nasa --since 2026-01-10T00:00:00Z --images

  # Use a specific stored account and a visible browser window
  xscraper scrape nasa --account myhandle --headful`,
	Args: cobra.MinimumNArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVar(&sinceSpec, "since", "24h", "start boundary: duration, RFC3339 timestamp, or YYYY-MM-DD")
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for reports")
	scrapeCmd.Flags().StringVar(&reportFile, "report-file", "", "run report file name inside the output directory")
	scrapeCmd.Flags().BoolVar(&withImages, "images", false, "download post images to local disk")
	scrapeCmd.Flags().StringVar(&imagesDir, "images-dir", "", "destination directory for downloaded images")
	scrapeCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of feeds collected in parallel")
	scrapeCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "collection attempts per author before giving up")
	scrapeCmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
}

func runScrape(cmd *cobra.Command, args []string) {
	boundary, err := parseSince(sinceSpec, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --since value %q: %v\n", sinceSpec, err)
		os.Exit(1)
	}

	// Only explicitly set flags override the config file
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if reportFile != "" {
		flags["report-file"] = reportFile
	}
	if withImages {
		flags["images"] = true
	}
	if imagesDir != "" {
		flags["images-dir"] = imagesDir
	}
	if concurrency > 0 {
		flags["concurrency"] = concurrency
	}
	if maxAttempts > 0 {
		flags["max-attempts"] = maxAttempts
	}
	if headful {
		flags["headful"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("xscraper starting")

	creds, err := resolveCredentials(accountName, cfg, log)
	if err != nil {
		log.WithError(err).Error("No usable credentials")
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "\nTo store credentials securely, run:")
		fmt.Fprintln(os.Stderr, "  xscraper auth login")
		fmt.Fprintln(os.Stderr, "\nFor scripted runs, you can also set environment variables:")
		fmt.Fprintln(os.Stderr, "  export XSCRAPER_AUTH_TOKEN=your_auth_token")
		fmt.Fprintln(os.Stderr, "  export XSCRAPER_CSRF_TOKEN=your_ct0_token")
		os.Exit(1)
	}

	handles := make([]string, 0, len(args))
	for _, arg := range args {
		handles = append(handles, strings.TrimSpace(arg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := scrape.NewService(cfg, creds, log).Run(ctx, handles, boundary)
	if err != nil {
		log.WithError(err).Error("Collection run failed")
		fmt.Fprintln(os.Stderr, "Collection run failed:", err)
		os.Exit(1)
	}

	fmt.Printf("Collected %d posts from %d authors since %s\n",
		report.TotalPosts, report.Authors, boundary.UTC().Format(time.RFC3339))
	fmt.Printf("Report written to %s\n", filepath.Join(cfg.Output.Directory, cfg.Output.ReportFile))
}

// resolveCredentials picks the session cookie pair for this run: the
// named stored account when --account is set, otherwise the default
// lookup, which prefers XSCRAPER_AUTH_TOKEN and XSCRAPER_CSRF_TOKEN
// from the environment.
func resolveCredentials(name string, cfg *config.Config, log logger.Logger) (browser.Credentials, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return browser.Credentials{}, fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var account *auth.Account
	if name != "" {
		account, err = manager.Retrieve(name)
		if err != nil {
			return browser.Credentials{}, fmt.Errorf("account %q not found, use 'xscraper auth list' to see stored accounts", name)
		}
	} else {
		account, err = manager.RetrieveDefault()
		if err != nil {
			return browser.Credentials{}, fmt.Errorf("no X credentials found")
		}
	}

	// A stored user agent wins over the configured one so the session
	// looks like the browser the cookies came from.
	if account.UserAgent != "" {
		cfg.Browser.UserAgent = account.UserAgent
	}
	if account.Handle != "" {
		log.WithField("account", account.Handle).Info("Using stored credentials")
	}

	return browser.Credentials{
		AuthToken: account.AuthToken,
		CSRFToken: account.CSRFToken,
	}, nil
}

// parseSince turns a --since value into the inclusive start boundary.
// Durations are anchored at now; bare dates mean midnight UTC.
func parseSince(spec string, now time.Time) (time.Time, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("duration must be positive")
		}
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", spec); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("want a duration (24h), an RFC3339 timestamp, or a date (2026-01-10)")
}
