package history

import "time"

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Outcomes recorded for entries that never reached verification.
const (
	OutcomePlanned    = "planned"
	OutcomeDownloaded = "downloaded"
	OutcomeFailed     = "failed"
)

// EntryRecord captures what happened to one manifest entry.
type EntryRecord struct {
	Repo         string
	Ref          string
	Command      string
	Outcome      string
	CheckedCount int
	Mismatches   int
	Error        string
}

// Run is a recorded invocation.
type Run struct {
	ID           string
	ManifestPath string
	DryRun       bool
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	Added        int
	Removed      int
	Entries      []EntryRecord
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
