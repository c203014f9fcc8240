package services

import (
	"testing"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inQueue(e models.QueueEntry, queueID string) models.QueueEntry {
	e.QueueID = queueID
	return e
}

func TestGroupByQueue(t *testing.T) {
	now := time.Now()
	entries := []models.QueueEntry{
		inQueue(entry("a", 1, now), "alpha"),
		inQueue(entry("b", 2, now), "beta"),
		inQueue(entry("c", 3, now), "alpha"),
		inQueue(entry("d", 4, now), ""),
	}

	buckets := GroupByQueue(entries)

	require.Len(t, buckets, 3)
	assert.Equal(t, "alpha", buckets[0].QueueID)
	assert.Equal(t, 2, buckets[0].Size())
	assert.Equal(t, "c", buckets[0].Entries[1].PlayerName)
	assert.Equal(t, "beta", buckets[1].QueueID)
	assert.Equal(t, models.DefaultQueueID, buckets[2].QueueID)
}

func TestGroupByQueueEmpty(t *testing.T) {
	assert.Empty(t, GroupByQueue(nil))
}

func TestFindPlayerQueue(t *testing.T) {
	now := time.Now()
	buckets := GroupByQueue([]models.QueueEntry{
		inQueue(entry("a", 1, now), "full"),
		inQueue(entry("b", 1, now), "full"),
		inQueue(entry("c", 1, now), "open"),
	})

	cases := []struct {
		name   string
		player string
		want   string
		ok     bool
	}{
		{name: "existing membership wins even when full", player: "a", want: "full", ok: true},
		{name: "first open queue", player: "z", want: "open", ok: true},
		{name: "member of open queue", player: "c", want: "open", ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindPlayerQueue(buckets, tc.player, 2)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindPlayerQueueNoneOpen(t *testing.T) {
	now := time.Now()
	buckets := GroupByQueue([]models.QueueEntry{
		inQueue(entry("a", 1, now), "full"),
		inQueue(entry("b", 1, now), "full"),
	})

	_, ok := FindPlayerQueue(buckets, "z", 2)
	assert.False(t, ok)

	_, ok = FindPlayerQueue(nil, "z", 2)
	assert.False(t, ok)
}

func TestSummarizeBucket(t *testing.T) {
	cfg := config.DefaultRanked()
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	b := GroupByQueue([]models.QueueEntry{
		entry("a", 10, start),
		entry("b", 30, start.Add(10*time.Minute)),
	})[0]

	summary := summarizeBucket(b, start.Add(40*time.Minute), cfg)

	assert.Equal(t, 2, summary.Size)
	assert.Equal(t, 0, summary.PlayersNeeded)
	assert.False(t, summary.TimedOut)
	require.NotNil(t, summary.TimeRemainingMs)
	assert.Equal(t, (30 * time.Minute).Milliseconds(), *summary.TimeRemainingMs)
	assert.Equal(t, "b", summary.Standings[0].PlayerName)
	assert.Equal(t, 2, summary.Standings[1].Position)
}

func TestNormalizePlayerName(t *testing.T) {
	composed, err := NormalizePlayerName("  Ren\u00e9 ")
	require.NoError(t, err)
	decomposed, err := NormalizePlayerName("Rene\u0301")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "Ren\u00e9", composed)

	_, err = NormalizePlayerName("   ")
	assert.ErrorIs(t, err, ErrPlayerNameRequired)

	_, err = NormalizePlayerName("abcdefghijklmnopqrstuvwxyz0123456789")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeQueueID(t *testing.T) {
	id, err := NormalizeQueueID("  Friday Night Cup! ")
	require.NoError(t, err)
	assert.Equal(t, "friday-night-cup", id)

	id, err = NormalizeQueueID("")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = NormalizeQueueID("!!!")
	assert.ErrorIs(t, err, ErrValidation)
}
