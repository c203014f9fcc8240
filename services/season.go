package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/events"
	"ranked-tournaments/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const monthLayout = "2006-01"

// MonthKey formats t as the UTC "YYYY-MM" season identifier.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

// RolloverOutcome reports what a season check did.
type RolloverOutcome struct {
	Seeded        bool                   `json:"seeded"`
	RolledOver    bool                   `json:"rolled_over"`
	PreviousMonth string                 `json:"previous_month,omitempty"`
	CurrentMonth  string                 `json:"current_month"`
	Champion      *models.ChampionRecord `json:"champion,omitempty"`
}

// SeasonService is the single place that closes a monthly season.
type SeasonService struct {
	DB     *gorm.DB
	Config config.Ranked
	Events Publisher
	Now    func() time.Time
}

func NewSeasonService(db *gorm.DB, cfg config.Ranked, publisher Publisher) *SeasonService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &SeasonService{
		DB:     db,
		Config: cfg,
		Events: publisher,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Rollover compares the stored month with the current one. The very first
// call only records the month. On a month change the previous season's
// champion and standings are captured and every rating is reset, all in one
// transaction guarded by a compare-and-swap on the stored month, so
// concurrent callers produce exactly one champion.
func (s *SeasonService) Rollover(ctx context.Context) (*RolloverOutcome, error) {
	now := s.Now()
	out := &RolloverOutcome{CurrentMonth: MonthKey(now)}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting models.SeasonSetting
		err := tx.Where("name = ?", models.SettingLastResetMonth).First(&setting).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seed := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SeasonSetting{
				Name:      models.SettingLastResetMonth,
				Value:     out.CurrentMonth,
				UpdatedAt: now,
			})
			if seed.Error != nil {
				return fmt.Errorf("seed season month: %w", seed.Error)
			}
			out.Seeded = seed.RowsAffected == 1
			return nil
		}
		if err != nil {
			return fmt.Errorf("load season month: %w", err)
		}
		if setting.Value == out.CurrentMonth {
			return nil
		}

		swap := tx.Model(&models.SeasonSetting{}).
			Where("name = ? AND value = ?", models.SettingLastResetMonth, setting.Value).
			Updates(map[string]interface{}{"value": out.CurrentMonth, "updated_at": now})
		if swap.Error != nil {
			return fmt.Errorf("advance season month: %w", swap.Error)
		}
		if swap.RowsAffected != 1 {
			// Someone else closed this season.
			return nil
		}

		out.PreviousMonth = setting.Value
		champion, err := s.closeSeason(tx, setting.Value, now)
		if err != nil {
			return err
		}
		out.Champion = champion
		out.RolledOver = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Seeded {
		log.Printf("[SEASON] First season check, recorded month %s", out.CurrentMonth)
	}
	if out.RolledOver {
		champion := "none"
		if out.Champion != nil {
			champion = out.Champion.PlayerName
		}
		log.Printf("✅ [SEASON] Closed season %s (champion: %s), ratings reset for %s",
			out.PreviousMonth, champion, out.CurrentMonth)

		if err := s.Events.Publish(ctx, events.Event{
			Type:      events.EventSeasonRolledOver,
			Key:       out.PreviousMonth,
			Timestamp: now,
			Data:      out,
		}); err != nil {
			log.Printf("⚠️  [SEASON] Failed to publish rollover of %s: %v", out.PreviousMonth, err)
		}
	}
	return out, nil
}

func (s *SeasonService) closeSeason(tx *gorm.DB, month string, now time.Time) (*models.ChampionRecord, error) {
	var top []models.PlayerRating
	if err := rankedPlayers(tx).Limit(s.Config.ArchiveSize).Find(&top).Error; err != nil {
		return nil, fmt.Errorf("load season standings: %w", err)
	}

	var champion *models.ChampionRecord
	if len(top) > 0 {
		record := models.ChampionRecord{
			ID:          uuid.NewString(),
			PlayerName:  top[0].PlayerName,
			Elo:         top[0].Elo,
			GamesPlayed: top[0].GamesPlayed,
			Wins:        top[0].Wins,
			SeasonMonth: month,
			AwardedAt:   now,
		}
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season_month"}},
			DoNothing: true,
		}).Create(&record)
		if insert.Error != nil {
			return nil, fmt.Errorf("record champion: %w", insert.Error)
		}
		if insert.RowsAffected == 1 {
			champion = &record
		}
	}

	standings := make([]models.SeasonStanding, len(top))
	for i, p := range top {
		standings[i] = models.SeasonStanding{
			Rank:        i + 1,
			PlayerName:  p.PlayerName,
			Elo:         p.Elo,
			GamesPlayed: p.GamesPlayed,
			Wins:        p.Wins,
		}
	}
	body, err := json.Marshal(standings)
	if err != nil {
		return nil, fmt.Errorf("encode standings: %w", err)
	}
	archive := models.SeasonArchive{
		ID:          uuid.NewString(),
		SeasonMonth: month,
		Standings:   string(body),
		CreatedAt:   now,
	}
	if champion != nil {
		archive.ChampionName = champion.PlayerName
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "season_month"}},
		DoNothing: true,
	}).Create(&archive).Error; err != nil {
		return nil, fmt.Errorf("archive standings: %w", err)
	}

	if err := tx.Model(&models.PlayerRating{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"elo":                        s.Config.DefaultElo,
			"games_played":               0,
			"wins":                       0,
			"last_opponent":              nil,
			"consecutive_opponent_count": 0,
			"updated_at":                 now,
		}).Error; err != nil {
		return nil, fmt.Errorf("reset ratings: %w", err)
	}
	return champion, nil
}

// rankedPlayers is the leaderboard ordering: players with at least one game,
// best elo first.
func rankedPlayers(db *gorm.DB) *gorm.DB {
	return db.Model(&models.PlayerRating{}).
		Where("games_played > 0").
		Order("elo DESC, wins DESC, games_played DESC, player_name ASC")
}
