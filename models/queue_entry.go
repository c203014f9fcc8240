package models

import "time"

// DefaultQueueID is the bucket used when no explicit queue is requested
// and no open queue exists.
const DefaultQueueID = "default"

// QueueEntry is one player's live submission in a matchmaking queue.
// The (queue_id, player_name) pair is unique.
type QueueEntry struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	QueueID     string    `json:"queue_id" gorm:"not null;default:'default';uniqueIndex:idx_queue_player,priority:1;index"`
	PlayerName  string    `json:"player_name" gorm:"not null;uniqueIndex:idx_queue_player,priority:2;index"`
	Score       int64     `json:"score" gorm:"not null"`
	Attempts    int       `json:"attempts" gorm:"not null"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"` // first submission; retries keep it
	UpdatedAt   time.Time `json:"updated_at"`
}
