package services

import (
	"context"
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

// Publisher receives domain events after they are committed.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) error { return nil }

// Resolution is the committed outcome of one tournament.
type Resolution struct {
	TournamentID string            `json:"tournament_id"`
	QueueID      string            `json:"queue_id"`
	Participants int               `json:"participants"`
	Trigger      string            `json:"trigger"`
	ResolvedAt   time.Time         `json:"resolved_at"`
	Results      []PlacementResult `json:"results"`
}

// TournamentResolver turns a queue bucket into rating changes.
type TournamentResolver struct {
	DB     *gorm.DB
	Config config.Ranked
	Events Publisher
	Now    func() time.Time
}

func NewTournamentResolver(db *gorm.DB, cfg config.Ranked, publisher Publisher) *TournamentResolver {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &TournamentResolver{
		DB:     db,
		Config: cfg,
		Events: publisher,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Resolve claims the snapshot's entries and applies the tournament in one
// transaction. If any snapshot entry is already gone another resolver got
// there first and ErrAlreadyResolved is returned with nothing written.
func (r *TournamentResolver) Resolve(ctx context.Context, queueID string, snapshot []models.QueueEntry, trigger string) (*Resolution, error) {
	if len(snapshot) == 0 {
		return nil, ErrQueueNotFound
	}

	ids := make([]string, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ID
	}

	now := r.Now()
	res := &Resolution{
		TournamentID: uuid.Must(uuid.NewV7()).String(),
		QueueID:      queueID,
		Trigger:      trigger,
		ResolvedAt:   now,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, err := claimEntries(tx, queueID, ids)
		if err != nil {
			return err
		}

		ratings, err := r.lockRatings(tx, entries, now)
		if err != nil {
			return err
		}

		current := make(map[string]int, len(ratings))
		for name, rating := range ratings {
			current[name] = rating.Elo
		}
		res.Results = ComputePlacements(entries, current, r.Config)
		res.Participants = len(res.Results)

		if err := r.applyRatings(tx, res.Results, ratings, now); err != nil {
			return err
		}
		return r.writeLedger(tx, res)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🏆 [RESOLVER] Resolved queue %s (%d players, trigger=%s) as tournament %s",
		queueID, res.Participants, trigger, res.TournamentID)

	if err := r.Events.Publish(ctx, events.Event{
		Type:      events.EventTournamentResolved,
		Key:       queueID,
		Timestamp: now,
		Data:      res,
	}); err != nil {
		log.Printf("⚠️  [RESOLVER] Failed to publish resolution of %s: %v", queueID, err)
	}
	return res, nil
}

// claimEntries re-reads and deletes exactly the snapshot rows. The delete
// must remove every one of them or the whole transaction is abandoned.
func claimEntries(tx *gorm.DB, queueID string, ids []string) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("queue_id = ? AND id IN ?", queueID, ids).
		Order("submitted_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load queue entries: %w", err)
	}
	if len(entries) != len(ids) {
		return nil, ErrAlreadyResolved
	}

	del := tx.Where("queue_id = ? AND id IN ?", queueID, ids).Delete(&models.QueueEntry{})
	if del.Error != nil {
		return nil, fmt.Errorf("claim queue entries: %w", del.Error)
	}
	if del.RowsAffected != int64(len(ids)) {
		return nil, ErrAlreadyResolved
	}
	return entries, nil
}

// lockRatings fetches or creates the rating of every participant and holds
// row locks on them until the transaction ends.
func (r *TournamentResolver) lockRatings(tx *gorm.DB, entries []models.QueueEntry, now time.Time) (map[string]*models.PlayerRating, error) {
	names := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.PlayerName] {
			seen[e.PlayerName] = true
			names = append(names, e.PlayerName)
		}
	}

	defaults := make([]models.PlayerRating, len(names))
	for i, name := range names {
		defaults[i] = models.PlayerRating{PlayerName: name, Elo: r.Config.DefaultElo, CreatedAt: now, UpdatedAt: now}
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return nil, fmt.Errorf("create missing ratings: %w", err)
	}

	var rows []models.PlayerRating
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_name IN ?", names).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	ratings := make(map[string]*models.PlayerRating, len(rows))
	for i := range rows {
		ratings[rows[i].PlayerName] = &rows[i]
	}
	return ratings, nil
}

func (r *TournamentResolver) applyRatings(tx *gorm.DB, results []PlacementResult, ratings map[string]*models.PlayerRating, now time.Time) error {
	contested := len(results) >= 2

	for _, result := range results {
		rating := ratings[result.PlayerName]
		if rating == nil {
			return fmt.Errorf("rating for %s not loaded", result.PlayerName)
		}

		updates := map[string]interface{}{
			"elo":        result.EloAfter,
			"updated_at": now,
		}
		if contested {
			rating.GamesPlayed++
			updates["games_played"] = rating.GamesPlayed
			if result.Placement == 1 {
				rating.Wins++
				updates["wins"] = rating.Wins
			}
		}

		// Head-to-head streaks are only tracked for two-player tournaments.
		if len(results) == 2 {
			opponent := results[0].PlayerName
			if opponent == result.PlayerName {
				opponent = results[1].PlayerName
			}
			if rating.LastOpponent != nil && *rating.LastOpponent == opponent {
				rating.ConsecutiveOpponentCount++
			} else {
				rating.ConsecutiveOpponentCount = 1
			}
			rating.LastOpponent = &opponent
			updates["last_opponent"] = opponent
			updates["consecutive_opponent_count"] = rating.ConsecutiveOpponentCount
		}

		rating.Elo = result.EloAfter
		if err := tx.Model(&models.PlayerRating{}).
			Where("player_name = ?", result.PlayerName).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("update rating of %s: %w", result.PlayerName, err)
		}
	}
	return nil
}

func (r *TournamentResolver) writeLedger(tx *gorm.DB, res *Resolution) error {
	tournament := models.Tournament{
		ID:           res.TournamentID,
		QueueID:      res.QueueID,
		Participants: res.Participants,
		Trigger:      res.Trigger,
		ResolvedAt:   res.ResolvedAt,
	}
	if len(res.Results) > 0 {
		tournament.WinnerName = res.Results[0].PlayerName
	}
	if err := tx.Create(&tournament).Error; err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}

	rows := make([]models.TournamentResult, len(res.Results))
	for i, result := range res.Results {
		rows[i] = models.TournamentResult{
			ID:           uuid.NewString(),
			TournamentID: res.TournamentID,
			PlayerName:   result.PlayerName,
			QueueID:      res.QueueID,
			Score:        result.Score,
			Placement:    result.Placement,
			Participants: res.Participants,
			EloBefore:    result.EloBefore,
			EloAfter:     result.EloAfter,
			EloChange:    result.EloChange,
			ResolvedAt:   res.ResolvedAt,
		}
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("append tournament results: %w", err)
	}
	return nil
}
