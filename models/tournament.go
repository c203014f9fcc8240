package models

import (
	"time"
)

const (
	TriggerAuto  = "auto"
	TriggerAdmin = "admin"
)

// Tournament is one resolved queue bucket.
type Tournament struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	QueueID      string    `json:"queue_id" gorm:"not null;index"`
	Participants int       `json:"participants" gorm:"not null"`
	WinnerName   string    `json:"winner_name"`
	Trigger      string    `json:"trigger" gorm:"type:varchar(16);not null"` // auto, admin
	ResolvedAt   time.Time `json:"resolved_at" gorm:"not null;index"`

	// Relationships
	Results []TournamentResult `json:"results,omitempty" gorm:"foreignKey:TournamentID"`
}

// TournamentResult is an append-only ledger row: one per player per tournament.
type TournamentResult struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TournamentID string    `json:"tournament_id" gorm:"not null;uniqueIndex:idx_result_tournament_player,priority:1"`
	PlayerName   string    `json:"player_name" gorm:"not null;uniqueIndex:idx_result_tournament_player,priority:2;index"`
	QueueID      string    `json:"queue_id" gorm:"not null"`
	Score        int64     `json:"score"`
	Placement    int       `json:"placement"`
	Participants int       `json:"participants"`
	EloBefore    int       `json:"elo_before"`
	EloAfter     int       `json:"elo_after"`
	EloChange    int       `json:"elo_change"`
	ResolvedAt   time.Time `json:"resolved_at" gorm:"not null;index"`
}
