package collector

// StopReason identifies which termination rule ended a collection run
type StopReason string

const (
	// StopBoundary means three consecutive non-pinned posts fell below the
	// start boundary
	StopBoundary StopReason = "boundary"

	// StopIdle means three consecutive rounds added no new posts
	StopIdle StopReason = "idle"

	// StopRoundCap means the pagination round ceiling was reached
	StopRoundCap StopReason = "round_cap"
)

// Observer receives collection lifecycle notifications. The collector itself
// stays silent; callers plug in logging or metrics here. Implementations must
// tolerate concurrent calls when one observer serves several runs.
type Observer interface {
	// CandidateSkipped reports a rendered post that failed validation
	CandidateSkipped(authorID string, reason error)

	// RoundCompleted reports one finished pagination round and how many
	// posts it added
	RoundCompleted(authorID string, round, added int)

	// RunStopped reports the termination of a run and why it stopped
	RunStopped(authorID string, reason StopReason, rounds, collected int)
}

// NopObserver discards every notification
type NopObserver struct{}

func (NopObserver) CandidateSkipped(string, error) {}

func (NopObserver) RoundCompleted(string, int, int) {}

func (NopObserver) RunStopped(string, StopReason, int, int) {}
