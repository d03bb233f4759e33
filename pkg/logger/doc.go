// Package logger provides structured logging for the scraper.
//
// It wraps the zerolog library behind a small Logger interface: leveled
// methods from Debug through Fatal, field chaining for structured
// output, colored console rendering, and an optional file sink next to
// the console. A package-wide instance is initialized once from
// configuration:
//
//	import "xscraper/pkg/logger"
//
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/xscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	log := logger.GetLogger()
//	log.Info("collection started")
//	log.WithField("author", "acme").Info("feed ready")
//	log.WithError(err).Error("image download failed")
//
// Tests can swap in NewTestLogger, which records every message instead
// of writing it.
package logger
