package models

import "time"

// SettingLastResetMonth stores the last "YYYY-MM" the season check observed.
const SettingLastResetMonth = "last_reset_month"

// SeasonSetting is a small key/value row used for season bookkeeping.
type SeasonSetting struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChampionRecord is the #1 player of a finished season. At most one per month.
type ChampionRecord struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	PlayerName  string    `json:"player_name" gorm:"not null;index"`
	Elo         int       `json:"elo"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	SeasonMonth string    `json:"season_month" gorm:"type:varchar(7);not null;uniqueIndex"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// SeasonArchive keeps the final standings of a season until they are
// uploaded to object storage.
type SeasonArchive struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	SeasonMonth  string     `json:"season_month" gorm:"type:varchar(7);not null;uniqueIndex"`
	ChampionName string     `json:"champion_name,omitempty"`
	Standings    string     `json:"-" gorm:"type:text;not null"` // JSON array of SeasonStanding
	ObjectKey    string     `json:"object_key,omitempty"`
	URL          string     `json:"url,omitempty"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty" gorm:"index"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SeasonStanding is one line of an archived season table.
type SeasonStanding struct {
	Rank        int    `json:"rank"`
	PlayerName  string `json:"player_name"`
	Elo         int    `json:"elo"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
}
