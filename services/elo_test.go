package services

import (
	"testing"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlacementsTwoPlayers(t *testing.T) {
	now := time.Now()
	entries := []models.QueueEntry{
		entry("bob", 50, now),
		entry("alice", 100, now.Add(time.Second)),
	}

	results := ComputePlacements(entries, map[string]int{"alice": 1000, "bob": 1000}, config.DefaultRanked())
	require.Len(t, results, 2)

	winner, loser := results[0], results[1]
	assert.Equal(t, "alice", winner.PlayerName)
	assert.Equal(t, 1, winner.Placement)
	assert.Equal(t, 0.5, winner.ExpectedScore)
	assert.Equal(t, 1.0, winner.ActualScore)
	assert.Equal(t, 0.5, winner.ScoreDeviation)
	assert.Equal(t, 1.25, winner.PerformanceFactor)
	assert.Equal(t, 20, winner.EloChange)
	assert.Equal(t, 1020, winner.EloAfter)

	assert.Equal(t, "bob", loser.PlayerName)
	assert.Equal(t, 2, loser.Placement)
	assert.Equal(t, 0.0, loser.ActualScore)
	assert.Equal(t, -0.5, loser.ScoreDeviation)
	assert.Equal(t, 0.75, loser.PerformanceFactor)
	assert.Equal(t, -12, loser.EloChange)
	assert.Equal(t, 988, loser.EloAfter)
}

func TestComputePlacementsSinglePlayer(t *testing.T) {
	results := ComputePlacements([]models.QueueEntry{entry("solo", 999, time.Now())}, nil, config.DefaultRanked())

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Placement)
	assert.Equal(t, 0, results[0].EloChange)
	assert.Equal(t, 1000, results[0].EloBefore)
	assert.Equal(t, 1000, results[0].EloAfter)
}

func TestComputePlacementsThreePlayers(t *testing.T) {
	now := time.Now()
	entries := []models.QueueEntry{
		entry("c", 100, now),
		entry("a", 300, now),
		entry("b", 200, now),
	}

	results := ComputePlacements(entries, nil, config.DefaultRanked())

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].PlayerName, results[1].PlayerName, results[2].PlayerName})
	assert.Equal(t, []int{20, 0, -12}, []int{results[0].EloChange, results[1].EloChange, results[2].EloChange})
	assert.Equal(t, 0.5, results[1].ActualScore)
}

func TestComputePlacementsTiesKeepSubmissionOrder(t *testing.T) {
	now := time.Now()
	entries := []models.QueueEntry{
		entry("first", 50, now),
		entry("second", 50, now.Add(time.Minute)),
	}

	results := ComputePlacements(entries, nil, config.DefaultRanked())

	assert.Equal(t, "first", results[0].PlayerName)
	assert.Equal(t, 1, results[0].Placement)
	// Equal scores: zero range is treated as one, so no performance bonus.
	assert.Equal(t, 1.0, results[0].PerformanceFactor)
	assert.Equal(t, 16, results[0].EloChange)
	assert.Equal(t, -16, results[1].EloChange)
}

func TestComputePlacementsUnevenRatings(t *testing.T) {
	now := time.Now()
	entries := []models.QueueEntry{
		entry("strong", 100, now),
		entry("weak", 50, now),
	}

	results := ComputePlacements(entries, map[string]int{"strong": 1200, "weak": 1000}, config.DefaultRanked())

	assert.InDelta(t, 0.640065, results[0].ExpectedScore, 1e-6)
	assert.InDelta(t, 0.359935, results[1].ExpectedScore, 1e-6)
	assert.Equal(t, 14, results[0].EloChange)
	assert.Equal(t, -9, results[1].EloChange)
}

func TestComputePlacementsUsesKFactor(t *testing.T) {
	cfg := config.DefaultRanked()
	cfg.KFactor = 16
	now := time.Now()

	results := ComputePlacements([]models.QueueEntry{entry("a", 100, now), entry("b", 50, now)}, nil, cfg)

	assert.Equal(t, 10, results[0].EloChange)
	assert.Equal(t, -6, results[1].EloChange)
}

func TestExpectedScoreIsSymmetric(t *testing.T) {
	assert.InDelta(t, 1.0, ExpectedScore(1400, 1000)+ExpectedScore(1000, 1400), 1e-12)
	assert.Equal(t, 0.5, ExpectedScore(1000, 1000))
}
