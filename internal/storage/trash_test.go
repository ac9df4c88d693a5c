package storage

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

func noteIDs(notes []Note) []int64 {
	out := make([]int64, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestSoftDeleteLifecycle(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	id, err := engine.CreateNote(ctx, "ephemeral", nil)
	require.NoError(t, err)
	keep, err := engine.CreateNote(ctx, "keeper", nil)
	require.NoError(t, err)

	moved, err := engine.MoveToTrash(ctx, []int64{id, 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	active, err := engine.ListNotes(ctx, NoteQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int64{keep}, noteIDs(active))

	trash, err := engine.ListTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, noteIDs(trash))
	assert.True(t, trash[0].InTrash())

	restored, err := engine.RestoreFromTrash(ctx, []int64{id, 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	active, err = engine.ListNotes(ctx, NoteQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{id, keep}, noteIDs(active))

	trash, err = engine.ListTrash(ctx)
	require.NoError(t, err)
	assert.Empty(t, trash)

	got, err := engine.GetNote(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)
}

func TestMoveToTrashRestampsTrashedNote(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()

	id, err := engine.CreateNote(ctx, "old", nil)
	require.NoError(t, err)
	_, err = engine.MoveToTrash(ctx, []int64{id})
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	moved, err := engine.MoveToTrash(ctx, []int64{id})
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	got, err := engine.GetNote(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
	assert.Equal(t, clock.Now().Unix(), *got.DeletedAt)

	// The retention clock restarted: two days later the note is 2 days old, not 4.
	clock.Advance(48 * time.Hour)
	deleted, err := engine.CleanupTrash(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestListTrashNewestDeletionFirst(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()

	a, err := engine.CreateNote(ctx, "a", nil)
	require.NoError(t, err)
	b, err := engine.CreateNote(ctx, "b", nil)
	require.NoError(t, err)

	_, err = engine.MoveToTrash(ctx, []int64{b})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = engine.MoveToTrash(ctx, []int64{a})
	require.NoError(t, err)

	trash, err := engine.ListTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, noteIDs(trash))
}

func TestCleanupTrashRetention(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()
	start := clock.Now()

	oldID, err := engine.CreateNote(ctx, "31 days in trash", nil)
	require.NoError(t, err)
	recentID, err := engine.CreateNote(ctx, "10 days in trash", nil)
	require.NoError(t, err)
	activeID, err := engine.CreateNote(ctx, "still active", nil)
	require.NoError(t, err)
	_, err = engine.CreateReminder(ctx, oldID, start.Add(time.Hour).Unix())
	require.NoError(t, err)

	clock.Set(start.Add(-31 * 24 * time.Hour))
	_, err = engine.MoveToTrash(ctx, []int64{oldID})
	require.NoError(t, err)
	clock.Set(start.Add(-10 * 24 * time.Hour))
	_, err = engine.MoveToTrash(ctx, []int64{recentID})
	require.NoError(t, err)
	clock.Set(start)

	deleted, err := engine.CleanupTrash(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = engine.GetNote(ctx, oldID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	reminders, err := engine.ListReminders(ctx, oldID)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	trash, err := engine.ListTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{recentID}, noteIDs(trash))

	_, err = engine.GetNote(ctx, activeID)
	require.NoError(t, err)

	again, err := engine.CleanupTrash(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, again)

	_, err = engine.CleanupTrash(ctx, -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCleanupTrashKeepsNoteAtExactThreshold(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()
	start := clock.Now()

	id, err := engine.CreateNote(ctx, "exactly 30 days in trash", nil)
	require.NoError(t, err)
	clock.Set(start.Add(-30 * 24 * time.Hour))
	_, err = engine.MoveToTrash(ctx, []int64{id})
	require.NoError(t, err)
	clock.Set(start)

	deleted, err := engine.CleanupTrash(ctx, 30)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	clock.Advance(time.Second)
	deleted, err = engine.CleanupTrash(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestCleanupTrashHugeRetentionKeepsEverything(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	id, err := engine.CreateNote(ctx, "keep forever", nil)
	require.NoError(t, err)
	_, err = engine.MoveToTrash(ctx, []int64{id})
	require.NoError(t, err)

	for _, days := range []int{200_000_000_000_000, math.MaxInt} {
		deleted, err := engine.CleanupTrash(ctx, days)
		require.NoError(t, err)
		assert.Zero(t, deleted, "retention %d", days)
	}
	trash, err := engine.ListTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, noteIDs(trash))
}

func TestRetentionThreshold(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC).Unix()
	assert.Equal(t, now, retentionThreshold(now, 0))
	assert.Equal(t, now-30*secondsPerDay, retentionThreshold(now, 30))
	assert.Equal(t, now%secondsPerDay, retentionThreshold(now, int(now/secondsPerDay)))
	assert.Equal(t, int64(math.MinInt64), retentionThreshold(now, int(now/secondsPerDay)+1))
	assert.Equal(t, int64(math.MinInt64), retentionThreshold(now, math.MaxInt))
}

func TestPermanentlyDeleteCascadesReminders(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()

	id, err := engine.CreateNote(ctx, "doomed", nil)
	require.NoError(t, err)
	other, err := engine.CreateNote(ctx, "survivor", nil)
	require.NoError(t, err)
	at := clock.Now().Add(time.Hour).Unix()
	for range 2 {
		_, err = engine.CreateReminder(ctx, id, at)
		require.NoError(t, err)
	}
	otherReminder, err := engine.CreateReminder(ctx, other, at)
	require.NoError(t, err)

	deleted, err := engine.PermanentlyDelete(ctx, []int64{id, 4242})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	remaining, err := engine.ListAllReminders(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, otherReminder, remaining[0].ID)

	_, err = engine.GetNote(ctx, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	active, err := engine.ListNotes(ctx, NoteQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int64{other}, noteIDs(active))
	trash, err := engine.ListTrash(ctx)
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestPermanentlyDeleteRollsBackOnFailure(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	a, err := engine.CreateNote(ctx, "a", nil)
	require.NoError(t, err)
	b, err := engine.CreateNote(ctx, "b", nil)
	require.NoError(t, err)

	// A trigger that refuses to delete b makes the second step of the batch fail.
	engine.mu.Lock()
	_, err = engine.db.ExecContext(ctx, `
		CREATE TRIGGER block_delete BEFORE DELETE ON notes
		WHEN old.content = 'b'
		BEGIN SELECT RAISE(ABORT, 'blocked'); END`)
	engine.mu.Unlock()
	require.NoError(t, err)

	_, err = engine.PermanentlyDelete(ctx, []int64{a, b})
	require.Error(t, err)

	active, err := engine.ListNotes(ctx, NoteQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b}, noteIDs(active))
}

func TestEmptyBatchesAreNoOps(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	for _, fn := range []func(context.Context, []int64) (int, error){
		engine.MoveToTrash, engine.RestoreFromTrash, engine.PermanentlyDelete,
	} {
		n, err := fn(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}
