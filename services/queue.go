package services

import (
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/models"
)

// Bucket is the set of live entries sharing one queue id.
type Bucket struct {
	QueueID string              `json:"queue_id"`
	Entries []models.QueueEntry `json:"entries"`
}

func (b Bucket) Size() int { return len(b.Entries) }

// Has reports whether the player holds an entry in the bucket.
func (b Bucket) Has(player string) bool {
	for _, e := range b.Entries {
		if e.PlayerName == player {
			return true
		}
	}
	return false
}

// GroupByQueue partitions entries by queue id. Buckets come out in order of
// first appearance and keep the input order of their entries.
func GroupByQueue(entries []models.QueueEntry) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, e := range entries {
		queueID := e.QueueID
		if queueID == "" {
			queueID = models.DefaultQueueID
		}
		i, ok := index[queueID]
		if !ok {
			i = len(buckets)
			index[queueID] = i
			buckets = append(buckets, Bucket{QueueID: queueID})
		}
		buckets[i].Entries = append(buckets[i].Entries, e)
	}
	return buckets
}

// FindPlayerQueue picks the queue a player belongs to. Existing membership
// wins over everything else; otherwise the first bucket still below
// minPlayers is chosen. ok is false when a new queue is needed.
func FindPlayerQueue(buckets []Bucket, player string, minPlayers int) (string, bool) {
	for _, b := range buckets {
		if b.Has(player) {
			return b.QueueID, true
		}
	}
	for _, b := range buckets {
		if b.Size() < minPlayers {
			return b.QueueID, true
		}
	}
	return "", false
}

func findBucket(buckets []Bucket, queueID string) (Bucket, bool) {
	for _, b := range buckets {
		if b.QueueID == queueID {
			return b, true
		}
	}
	return Bucket{}, false
}

// QueueSummary is the public view of a bucket, shared by the status endpoint
// and the admin listing.
type QueueSummary struct {
	QueueID         string          `json:"queue_id"`
	Size            int             `json:"size"`
	PlayersNeeded   int             `json:"players_needed"`
	TimedOut        bool            `json:"timed_out"`
	TimeRemainingMs *int64          `json:"time_remaining_ms"`
	TriggerAt       *time.Time      `json:"trigger_at,omitempty"`
	Standings       []QueueStanding `json:"standings"`
}

type QueueStanding struct {
	Position   int    `json:"position"`
	PlayerName string `json:"player_name"`
	Score      int64  `json:"score"`
	Attempts   int    `json:"attempts"`
}

func summarizeBucket(b Bucket, now time.Time, cfg config.Ranked) QueueSummary {
	status := DetectTimeout(b.Entries, now, cfg)
	summary := QueueSummary{
		QueueID:       b.QueueID,
		Size:          status.Size,
		PlayersNeeded: status.PlayersNeeded,
		TimedOut:      status.TimedOut,
		TriggerAt:     status.TriggerAt,
	}
	if status.TimeRemaining != nil {
		ms := status.TimeRemaining.Milliseconds()
		summary.TimeRemainingMs = &ms
	}
	for i, e := range sortByScore(b.Entries) {
		summary.Standings = append(summary.Standings, QueueStanding{
			Position:   i + 1,
			PlayerName: e.PlayerName,
			Score:      e.Score,
			Attempts:   e.Attempts,
		})
	}
	return summary
}
