package scrape

import (
	"context"
	"fmt"
	"path"
	"time"

	"xscraper/pkg/browser"
	"xscraper/pkg/collector"
	"xscraper/pkg/config"
	"xscraper/pkg/logger"
	"xscraper/pkg/materializer"
	"xscraper/pkg/models"
	"xscraper/pkg/orchestrator"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/retry"
	"xscraper/pkg/storage"
	"xscraper/pkg/twitter"
)

// Service drives a whole run from configuration: session bootstrap,
// fan-out collection, optional image materialization, and export.
type Service struct {
	cfg      *config.Config
	creds    browser.Credentials
	log      logger.Logger
	observer *LogObserver
}

// NewService builds a run driver. creds is the session cookie pair the
// browser signs in with; resolving it from the credential store is the
// CLI layer's job.
func NewService(cfg *config.Config, creds browser.Credentials, log logger.Logger) *Service {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Service{
		cfg:      cfg,
		creds:    creds,
		log:      log,
		observer: NewLogObserver(log),
	}
}

// BuildJobs normalizes handles into author jobs sharing one boundary.
// Handles are sanitized (leading @, case) and validated before any
// browser work starts.
func BuildJobs(handles []string, boundary time.Time) ([]models.AuthorJob, error) {
	jobs := make([]models.AuthorJob, 0, len(handles))
	for _, handle := range handles {
		sanitized := twitter.SanitizeHandle(handle)
		if !twitter.IsValidHandle(sanitized) {
			return nil, fmt.Errorf("invalid author handle %q", handle)
		}
		jobs = append(jobs, models.AuthorJob{
			AuthorID:      sanitized,
			StartBoundary: boundary,
		})
	}
	return jobs, nil
}

// Run collects every handle's feed back to the boundary, optionally
// materializes images, and exports the results. The returned report
// covers every requested author whatever their individual outcome.
func (s *Service) Run(ctx context.Context, handles []string, boundary time.Time) (*models.Report, error) {
	jobs, err := BuildJobs(handles, boundary)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()

	session, err := browser.NewSession(ctx, s.cfg.Browser, s.creds, s.log)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	results := s.collectAll(ctx, session, jobs)

	if s.cfg.Images.Enabled {
		materialized, err := s.materialize(ctx, session, results)
		if err != nil {
			// Collection already succeeded; export with the remote
			// references instead of losing the run.
			s.log.WithError(err).Warn("Image materialization failed")
		} else {
			results = materialized
		}
	}

	report := models.NewReport(startedAt, time.Now(), boundary, results)
	if err := s.export(&report); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"authors":     report.Authors,
		"total_posts": report.TotalPosts,
		"duration":    report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Run complete")

	return &report, nil
}

// collectAll fans the jobs out through the orchestrator
func (s *Service) collectAll(ctx context.Context, session *browser.Session, jobs []models.AuthorJob) []models.AuthorResult {
	runner := NewFeedRunner(func(ctx context.Context, authorID string) (FeedSurface, error) {
		return session.OpenFeed(ctx, authorID)
	}, collector.Options{
		MaxRounds:    s.cfg.Collector.MaxRounds,
		SettleDelay:  s.cfg.Collector.SettleDelay,
		ReadyTimeout: s.cfg.Collector.ReadyTimeout,
		Observer:     s.observer,
	})

	policy := retry.Policy{
		MaxAttempts: s.cfg.Orchestrator.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    s.cfg.Orchestrator.RetryBaseDelay,
			MaxDelay:     s.cfg.Orchestrator.RetryMaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
	}

	orch := orchestrator.New(runner, policy, orchestrator.Options{
		MaxConcurrent: s.cfg.Orchestrator.Concurrency,
		Observer:      s.observer,
	})
	return orch.CollectAll(ctx, jobs)
}

// materialize pipes the results through the image materializer
func (s *Service) materialize(ctx context.Context, session *browser.Session, results []models.AuthorResult) ([]models.AuthorResult, error) {
	m := materializer.New(func(ctx context.Context) (materializer.Surface, error) {
		return session.OpenFetcher(ctx)
	}, materializer.Config{
		Enabled:         true,
		DestinationRoot: s.cfg.Images.Directory,
	}, materializer.Options{
		Timeout:  s.cfg.Images.FetchTimeout,
		Limiter:  ratelimit.NewIntervalLimiter(s.cfg.Images.PacingInterval),
		Observer: s.observer,
	})
	return m.MaterializeResults(ctx, results)
}

// export writes per-author results and the run report under the output
// directory
func (s *Service) export(report *models.Report) error {
	store, err := storage.NewManager(s.cfg.Output.Directory)
	if err != nil {
		return err
	}

	for _, result := range report.Results {
		if err := store.WriteJSON(path.Join(result.AuthorID, "posts.json"), result); err != nil {
			return fmt.Errorf("failed to export results for %s: %w", result.AuthorID, err)
		}
	}

	if err := store.WriteJSON(s.cfg.Output.ReportFile, report); err != nil {
		return fmt.Errorf("failed to export run report: %w", err)
	}
	return nil
}
