package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultLeaderboardLimit = 20
	maxHistoryLimit         = 50
)

// RankedService is the public face of the matchmaking queue: score
// submission, queue status, the rating tables and the resolution pass.
type RankedService struct {
	DB       *gorm.DB
	Config   config.Ranked
	Resolver *TournamentResolver
	Season   *SeasonService
	Now      func() time.Time
}

func NewRankedService(db *gorm.DB, cfg config.Ranked, resolver *TournamentResolver, season *SeasonService) *RankedService {
	return &RankedService{
		DB:       db,
		Config:   cfg,
		Resolver: resolver,
		Season:   season,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListBuckets loads every live entry, oldest submission first, and groups
// them by queue.
func (s *RankedService) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var entries []models.QueueEntry
	if err := s.DB.WithContext(ctx).
		Order("submitted_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list queue entries: %w", err)
	}
	return GroupByQueue(entries), nil
}

type SubmitResult struct {
	Entry             models.QueueEntry `json:"entry"`
	Created           bool              `json:"created"`
	QueueSize         int               `json:"queue_size"`
	PlayersNeeded     int               `json:"players_needed"`
	AttemptsRemaining int               `json:"attempts_remaining"`
}

// SubmitScore records a score attempt. A player already waiting in a queue
// keeps that entry: attempts go up, the best score is kept and the original
// submission time (and so the timeout clock) is preserved.
func (s *RankedService) SubmitScore(ctx context.Context, player string, score int64, requestedQueue string) (*SubmitResult, error) {
	name, err := NormalizePlayerName(player)
	if err != nil {
		return nil, err
	}
	if score < 0 {
		return nil, ErrInvalidScore
	}
	queueID, err := NormalizeQueueID(requestedQueue)
	if err != nil {
		return nil, err
	}

	buckets, err := s.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	result := &SubmitResult{}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.QueueEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("player_name = ?", name).
			Order("submitted_at ASC").
			First(&existing).Error
		switch {
		case err == nil:
			if existing.Attempts >= s.Config.MaxAttempts {
				return ErrNoAttemptsLeft
			}
			existing.Attempts++
			existing.Score = max(existing.Score, score)
			existing.UpdatedAt = now
			if err := tx.Model(&models.QueueEntry{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"attempts":   existing.Attempts,
					"score":      existing.Score,
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("update queue entry: %w", err)
			}
			result.Entry = existing
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load queue entry: %w", err)
		}

		if queueID == "" {
			queueID = s.pickQueue(buckets, name)
		}
		entry := models.QueueEntry{
			ID:          uuid.NewString(),
			QueueID:     queueID,
			PlayerName:  name,
			Score:       score,
			Attempts:    1,
			SubmittedAt: now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create queue entry: %w", err)
		}
		result.Entry = entry
		result.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	var size int64
	if err := s.DB.WithContext(ctx).Model(&models.QueueEntry{}).
		Where("queue_id = ?", result.Entry.QueueID).
		Count(&size).Error; err != nil {
		return nil, fmt.Errorf("count queue: %w", err)
	}
	result.QueueSize = int(size)
	result.PlayersNeeded = max(0, s.Config.MinPlayers-result.QueueSize)
	result.AttemptsRemaining = max(0, s.Config.MaxAttempts-result.Entry.Attempts)

	log.Printf("[RANKED] %s submitted %d to queue %s (attempt %d/%d)",
		name, score, result.Entry.QueueID, result.Entry.Attempts, s.Config.MaxAttempts)
	return result, nil
}

func (s *RankedService) pickQueue(buckets []Bucket, player string) string {
	if queueID, ok := FindPlayerQueue(buckets, player, s.Config.MinPlayers); ok {
		return queueID
	}
	if _, taken := findBucket(buckets, models.DefaultQueueID); !taken {
		return models.DefaultQueueID
	}
	return "q-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ResolveDue resolves every bucket whose timeout has elapsed. Buckets taken
// by a concurrent resolver are skipped; other failures are collected and
// returned once every bucket was tried.
func (s *RankedService) ResolveDue(ctx context.Context, trigger string) ([]Resolution, error) {
	buckets, err := s.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var resolved []Resolution
	var errs []error
	for _, b := range buckets {
		if !DetectTimeout(b.Entries, now, s.Config).TimedOut {
			continue
		}
		res, err := s.Resolver.Resolve(ctx, b.QueueID, b.Entries, trigger)
		if errors.Is(err, ErrAlreadyResolved) {
			log.Printf("[RANKED] Queue %s already resolved elsewhere, skipping", b.QueueID)
			continue
		}
		if err != nil {
			log.Printf("❌ [RANKED] Failed to resolve queue %s: %v", b.QueueID, err)
			errs = append(errs, fmt.Errorf("resolve %s: %w", b.QueueID, err))
			continue
		}
		resolved = append(resolved, *res)
	}
	return resolved, errors.Join(errs...)
}

type PlayerStatus struct {
	PlayerName        string  `json:"player_name"`
	Elo               int     `json:"elo"`
	Rated             bool    `json:"rated"`
	GamesPlayed       int     `json:"games_played"`
	Wins              int     `json:"wins"`
	GlobalRank        *int    `json:"global_rank"`
	QueueID           *string `json:"queue_id"`
	QueuePosition     *int    `json:"queue_position"`
	AttemptsUsed      int     `json:"attempts_used"`
	AttemptsRemaining int     `json:"attempts_remaining"`
}

type StatusResponse struct {
	QueueID         string         `json:"queue_id"`
	QueueSize       int            `json:"queue_size"`
	PlayersNeeded   int            `json:"players_needed"`
	TimeRemainingMs *int64         `json:"time_remaining_ms"`
	MinPlayers      int            `json:"min_players"`
	MaxAttempts     int            `json:"max_attempts"`
	Queues          []QueueSummary `json:"queues"`
	Resolved        []Resolution   `json:"resolved,omitempty"`
	Player          *PlayerStatus  `json:"player,omitempty"`
}

// Status reports every queue and, when a player is given, that player's
// standing. It does not create rating rows.
func (s *RankedService) Status(ctx context.Context, player string) (*StatusResponse, error) {
	name := ""
	if strings.TrimSpace(player) != "" {
		var err error
		if name, err = NormalizePlayerName(player); err != nil {
			return nil, err
		}
	}

	if _, err := s.Season.Rollover(ctx); err != nil {
		return nil, err
	}

	resp := &StatusResponse{MinPlayers: s.Config.MinPlayers, MaxAttempts: s.Config.MaxAttempts}
	if s.Config.ResolveOnRead {
		resolved, err := s.ResolveDue(ctx, models.TriggerAuto)
		if err != nil {
			return nil, err
		}
		resp.Resolved = resolved
	}

	buckets, err := s.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	for _, b := range buckets {
		resp.Queues = append(resp.Queues, summarizeBucket(b, now, s.Config))
	}

	focus := ""
	if name != "" {
		for _, b := range buckets {
			if b.Has(name) {
				focus = b.QueueID
				break
			}
		}
	}
	if focus == "" {
		if queueID, ok := FindPlayerQueue(buckets, name, s.Config.MinPlayers); ok {
			focus = queueID
		}
	}
	resp.QueueID = focus
	resp.PlayersNeeded = s.Config.MinPlayers
	for _, q := range resp.Queues {
		if q.QueueID == focus {
			resp.QueueSize = q.Size
			resp.PlayersNeeded = q.PlayersNeeded
			resp.TimeRemainingMs = q.TimeRemainingMs
		}
	}

	if name != "" {
		ps, err := s.playerStatus(ctx, name, resp.Queues)
		if err != nil {
			return nil, err
		}
		resp.Player = ps
	}
	return resp, nil
}

func (s *RankedService) playerStatus(ctx context.Context, name string, queues []QueueSummary) (*PlayerStatus, error) {
	ps := &PlayerStatus{
		PlayerName:        name,
		Elo:               s.Config.DefaultElo,
		AttemptsRemaining: s.Config.MaxAttempts,
	}

	var rating models.PlayerRating
	err := s.DB.WithContext(ctx).Where("player_name = ?", name).First(&rating).Error
	switch {
	case err == nil:
		ps.Rated = true
		ps.Elo = rating.Elo
		ps.GamesPlayed = rating.GamesPlayed
		ps.Wins = rating.Wins
		if rating.GamesPlayed > 0 {
			rank, err := s.globalRank(ctx, rating.Elo)
			if err != nil {
				return nil, err
			}
			ps.GlobalRank = &rank
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load rating: %w", err)
	}

	for _, q := range queues {
		for _, st := range q.Standings {
			if st.PlayerName != name {
				continue
			}
			queueID, position := q.QueueID, st.Position
			ps.QueueID = &queueID
			ps.QueuePosition = &position
			ps.AttemptsUsed = st.Attempts
			ps.AttemptsRemaining = max(0, s.Config.MaxAttempts-st.Attempts)
		}
	}
	return ps, nil
}

// globalRank counts ranked players with a strictly higher elo, so equal
// ratings share a rank.
func (s *RankedService) globalRank(ctx context.Context, elo int) (int, error) {
	var higher int64
	if err := s.DB.WithContext(ctx).Model(&models.PlayerRating{}).
		Where("games_played > 0 AND elo > ?", elo).
		Count(&higher).Error; err != nil {
		return 0, fmt.Errorf("count higher ratings: %w", err)
	}
	return int(higher) + 1, nil
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerName  string `json:"player_name"`
	Elo         int    `json:"elo"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

type LeaderboardPage struct {
	Season     string             `json:"season"`
	Entries    []LeaderboardEntry `json:"entries"`
	Pagination Pagination         `json:"pagination"`
}

// Leaderboard runs the season check and returns one page of ranked players.
func (s *RankedService) Leaderboard(ctx context.Context, page, limit int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	limit = min(limit, s.Config.LeaderboardMaxLimit)

	season, err := s.Season.Rollover(ctx)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.PlayerRating{}).Where("games_played > 0").Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count leaderboard: %w", err)
	}

	var rows []models.PlayerRating
	offset := (page - 1) * limit
	if err := rankedPlayers(db).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	out := &LeaderboardPage{
		Season:  season.CurrentMonth,
		Entries: make([]LeaderboardEntry, len(rows)),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
			HasNext:    int64(offset+len(rows)) < total,
		},
	}
	for i, r := range rows {
		out.Entries[i] = LeaderboardEntry{
			Rank:        offset + i + 1,
			PlayerName:  r.PlayerName,
			Elo:         r.Elo,
			GamesPlayed: r.GamesPlayed,
			Wins:        r.Wins,
		}
	}
	return out, nil
}

// GetPlayer returns a player's rating, creating the default record on first
// lookup.
func (s *RankedService) GetPlayer(ctx context.Context, player string) (*models.PlayerRating, error) {
	name, err := NormalizePlayerName(player)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	rating := models.PlayerRating{PlayerName: name}
	if err := s.DB.WithContext(ctx).
		Where(models.PlayerRating{PlayerName: name}).
		Attrs(models.PlayerRating{Elo: s.Config.DefaultElo, CreatedAt: now, UpdatedAt: now}).
		FirstOrCreate(&rating).Error; err != nil {
		return nil, fmt.Errorf("load rating: %w", err)
	}
	return &rating, nil
}

// PlayerHistory returns the player's tournament ledger, newest first.
func (s *RankedService) PlayerHistory(ctx context.Context, player string, limit int) ([]models.TournamentResult, error) {
	name, err := NormalizePlayerName(player)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var rows []models.TournamentResult
	if err := s.DB.WithContext(ctx).
		Where("player_name = ?", name).
		Order("resolved_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return rows, nil
}

// Champions lists season champions, latest season first.
func (s *RankedService) Champions(ctx context.Context) ([]models.ChampionRecord, error) {
	var rows []models.ChampionRecord
	if err := s.DB.WithContext(ctx).Order("season_month DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load champions: %w", err)
	}
	return rows, nil
}
