package services

import (
	"sort"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/models"
)

// TimeoutStatus describes how close a bucket is to auto-resolution.
// TimeRemaining and TriggerAt are nil while the bucket has fewer than
// MinPlayers entries; no timer runs until then.
type TimeoutStatus struct {
	Size          int
	PlayersNeeded int
	TimedOut      bool
	TimeRemaining *time.Duration
	TriggerAt     *time.Time
}

// DetectTimeout starts the clock at the submission that filled the bucket
// to MinPlayers. The bucket is due once a full Timeout has elapsed since
// then; the boundary itself counts as timed out.
func DetectTimeout(entries []models.QueueEntry, now time.Time, cfg config.Ranked) TimeoutStatus {
	status := TimeoutStatus{Size: len(entries)}
	if cfg.MinPlayers > len(entries) {
		status.PlayersNeeded = cfg.MinPlayers - len(entries)
		return status
	}

	sorted := make([]models.QueueEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
	})

	triggerAt := sorted[cfg.MinPlayers-1].SubmittedAt
	elapsed := now.Sub(triggerAt)
	remaining := cfg.Timeout - elapsed
	if remaining < 0 {
		remaining = 0
	}

	status.TriggerAt = &triggerAt
	status.TimeRemaining = &remaining
	status.TimedOut = elapsed >= cfg.Timeout
	return status
}
