package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/events"
	"ranked-tournaments/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the ranked schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))
	return db
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t.UTC()} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	clock    *clock
	events   *recordingPublisher
	resolver *TournamentResolver
	season   *SeasonService
	ranked   *RankedService
	admin    *AdminService
}

func newFixture(t *testing.T, cfg config.Ranked) *fixture {
	t.Helper()
	db := newTestDB(t)
	clk := newClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}

	resolver := NewTournamentResolver(db, cfg, pub)
	resolver.Now = clk.Now
	season := NewSeasonService(db, cfg, pub)
	season.Now = clk.Now
	ranked := NewRankedService(db, cfg, resolver, season)
	ranked.Now = clk.Now

	return &fixture{
		db:       db,
		clock:    clk,
		events:   pub,
		resolver: resolver,
		season:   season,
		ranked:   ranked,
		admin:    NewAdminService(ranked),
	}
}

func (f *fixture) submit(t *testing.T, player string, score int64, queueID string) *SubmitResult {
	t.Helper()
	res, err := f.ranked.SubmitScore(context.Background(), player, score, queueID)
	require.NoError(t, err)
	return res
}

func (f *fixture) rating(t *testing.T, player string) models.PlayerRating {
	t.Helper()
	var r models.PlayerRating
	require.NoError(t, f.db.Where("player_name = ?", player).First(&r).Error)
	return r
}

func (f *fixture) queueCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.QueueEntry{}).Count(&n).Error)
	return n
}

func entry(player string, score int64, submittedAt time.Time) models.QueueEntry {
	return models.QueueEntry{
		ID:          uuid.NewString(),
		QueueID:     models.DefaultQueueID,
		PlayerName:  player,
		Score:       score,
		Attempts:    1,
		SubmittedAt: submittedAt,
	}
}
