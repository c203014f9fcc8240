package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every ranked table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&QueueEntry{},
		&PlayerRating{},
		&Tournament{},
		&TournamentResult{},
		&SeasonSetting{},
		&ChampionRecord{},
		&SeasonArchive{},
	)
}
