package scrape

import (
	"xscraper/pkg/collector"
	"xscraper/pkg/logger"
	"xscraper/pkg/materializer"
	"xscraper/pkg/orchestrator"
)

// LogObserver routes core transition points into structured logs. It
// satisfies the collector, orchestrator, and materializer observer
// interfaces so one instance can watch an entire run.
type LogObserver struct {
	log logger.Logger
}

var (
	_ collector.Observer    = (*LogObserver)(nil)
	_ orchestrator.Observer = (*LogObserver)(nil)
	_ materializer.Observer = (*LogObserver)(nil)
)

// NewLogObserver creates an observer backed by the given logger. A nil
// logger falls back to the global instance.
func NewLogObserver(log logger.Logger) *LogObserver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) CandidateSkipped(authorID string, reason error) {
	o.log.WithField("author", authorID).
		WithError(reason).
		Debug("Skipping unparseable candidate")
}

func (o *LogObserver) RoundCompleted(authorID string, round, added int) {
	o.log.WithFields(map[string]interface{}{
		"author": authorID,
		"round":  round,
		"added":  added,
	}).Debug("Pagination round complete")
}

func (o *LogObserver) RunStopped(authorID string, reason collector.StopReason, rounds, collected int) {
	o.log.WithFields(map[string]interface{}{
		"author":    authorID,
		"reason":    string(reason),
		"rounds":    rounds,
		"collected": collected,
	}).Info("Collection stopped")
}

func (o *LogObserver) AttemptStarted(authorID string, attempt, maxAttempts int) {
	o.log.WithFields(map[string]interface{}{
		"author":       authorID,
		"attempt":      attempt,
		"max_attempts": maxAttempts,
	}).Info("Starting collection attempt")
}

func (o *LogObserver) AttemptFailed(authorID string, attempt int, err error) {
	o.log.WithFields(map[string]interface{}{
		"author":  authorID,
		"attempt": attempt,
	}).WithError(err).Warn("Collection attempt failed")
}

func (o *LogObserver) HookFailed(authorID string, attempt int, err error) {
	o.log.WithFields(map[string]interface{}{
		"author":  authorID,
		"attempt": attempt,
	}).WithError(err).Warn("Retry hook failed")
}

func (o *LogObserver) JobExhausted(authorID string, attempts int, lastErr error) {
	o.log.WithFields(map[string]interface{}{
		"author":   authorID,
		"attempts": attempts,
	}).WithError(lastErr).Error("All collection attempts failed")
}

func (o *LogObserver) ImageStored(authorID, remoteURL, localRef string) {
	o.log.WithFields(map[string]interface{}{
		"author": authorID,
		"local":  localRef,
	}).Debug("Stored image")
}

func (o *LogObserver) ImageFallback(authorID, remoteURL string, err error) {
	o.log.WithFields(map[string]interface{}{
		"author": authorID,
		"url":    remoteURL,
	}).WithError(err).Warn("Keeping original image reference")
}
