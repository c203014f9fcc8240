package services

import (
	"context"
	"testing"
	"time"

	"ranked-tournaments/config"
	"ranked-tournaments/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminList(t *testing.T) {
	f := newFixture(t, config.DefaultRanked())
	f.submit(t, "alice", 100, "")
	f.clock.Advance(time.Second)
	f.submit(t, "bob", 50, "")
	f.clock.Advance(time.Second)
	f.submit(t, "carol", 70, "side")
	f.clock.Advance(time.Hour)

	out, err := f.admin.Execute(context.Background(), AdminRequest{Action: AdminActionList})
	require.NoError(t, err)

	require.Len(t, out.Queues, 2)
	assert.Equal(t, "default", out.Queues[0].QueueID)
	assert.True(t, out.Queues[0].TimedOut)
	assert.Equal(t, []string{"alice", "bob"}, out.Queues[0].Players)
	assert.Equal(t, 1, out.Queues[1].PlayersNeeded)
	assert.Nil(t, out.Queues[1].TimeRemainingMs)
}

func TestAdminForceResolve(t *testing.T) {
	f := newFixture(t, config.DefaultRanked())
	ctx := context.Background()
	f.submit(t, "alice", 100, "")
	f.submit(t, "bob", 50, "")
	f.submit(t, "carol", 70, "side")

	_, err := f.admin.Execute(ctx, AdminRequest{Action: AdminActionForceResolve})
	assert.ErrorIs(t, err, ErrQueueIDRequired)

	_, err = f.admin.Execute(ctx, AdminRequest{Action: AdminActionForceResolve, QueueID: "missing"})
	assert.ErrorIs(t, err, ErrQueueNotFound)

	_, err = f.admin.Execute(ctx, AdminRequest{Action: AdminActionForceResolve, QueueID: "side"})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	// No timeout needed for a forced resolution.
	out, err := f.admin.Execute(ctx, AdminRequest{Action: AdminActionForceResolve, QueueID: "default"})
	require.NoError(t, err)
	require.Len(t, out.Resolved, 1)
	assert.Equal(t, models.TriggerAdmin, out.Resolved[0].Trigger)
	assert.Equal(t, 1020, f.rating(t, "alice").Elo)

	_, err = f.admin.Execute(ctx, AdminRequest{Action: AdminActionForceResolve, QueueID: "default"})
	assert.ErrorIs(t, err, ErrQueueNotFound)
}

func TestAdminForceResolveAll(t *testing.T) {
	f := newFixture(t, config.DefaultRanked())
	f.submit(t, "a", 1, "one")
	f.submit(t, "b", 2, "one")
	f.submit(t, "c", 3, "two")
	f.submit(t, "d", 4, "two")
	f.submit(t, "e", 5, "three")

	out, err := f.admin.Execute(context.Background(), AdminRequest{Action: AdminActionForceResolveAll})
	require.NoError(t, err)

	assert.Len(t, out.Resolved, 2)
	assert.Equal(t, []string{"three"}, out.Skipped)
	assert.Equal(t, int64(1), f.queueCount(t))
}

func TestAdminCancelQueue(t *testing.T) {
	f := newFixture(t, config.DefaultRanked())
	ctx := context.Background()
	f.submit(t, "alice", 100, "")
	f.submit(t, "bob", 50, "")
	f.submit(t, "carol", 70, "side")

	out, err := f.admin.Execute(ctx, AdminRequest{Action: AdminActionCancelQueue, QueueID: "default"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Deleted)
	assert.Equal(t, int64(1), f.queueCount(t))

	_, err = f.admin.Execute(ctx, AdminRequest{Action: AdminActionCancelQueue, QueueID: "default"})
	assert.ErrorIs(t, err, ErrQueueNotFound)

	_, err = f.admin.Execute(ctx, AdminRequest{Action: AdminActionCancelQueue})
	assert.ErrorIs(t, err, ErrQueueIDRequired)

	// Cancelling never touches ratings.
	var ratings int64
	require.NoError(t, f.db.Model(&models.PlayerRating{}).Count(&ratings).Error)
	assert.Zero(t, ratings)
}

func TestAdminClearAll(t *testing.T) {
	f := newFixture(t, config.DefaultRanked())
	f.submit(t, "alice", 100, "")
	f.submit(t, "carol", 70, "side")

	out, err := f.admin.Execute(context.Background(), AdminRequest{Action: AdminActionClearAll})
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Deleted)
	assert.Zero(t, f.queueCount(t))
}

func TestAdminUnknownAction(t *testing.T) {
	f := newFixture(t, config.DefaultRanked())

	_, err := f.admin.Execute(context.Background(), AdminRequest{Action: "explode"})
	assert.ErrorIs(t, err, ErrUnknownAdminAction)
}
