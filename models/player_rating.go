package models

import "time"

// PlayerRating is the long-lived rating record of a player.
// Rows are created lazily and never deleted; season rollover resets them.
type PlayerRating struct {
	PlayerName               string    `json:"player_name" gorm:"primaryKey"`
	Elo                      int       `json:"elo" gorm:"not null;index"`
	GamesPlayed              int       `json:"games_played" gorm:"not null"`
	Wins                     int       `json:"wins" gorm:"not null"`
	LastOpponent             *string   `json:"last_opponent,omitempty"`
	ConsecutiveOpponentCount int       `json:"consecutive_opponent_count" gorm:"not null"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}
