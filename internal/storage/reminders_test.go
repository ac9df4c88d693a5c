package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

func TestReminderCRUD(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()

	noteID, err := engine.CreateNote(ctx, "call mom", nil)
	require.NoError(t, err)
	later := clock.Now().Add(2 * time.Hour).Unix()
	sooner := clock.Now().Add(time.Hour).Unix()

	first, err := engine.CreateReminder(ctx, noteID, later)
	require.NoError(t, err)
	second, err := engine.CreateReminder(ctx, noteID, sooner)
	require.NoError(t, err)

	list, err := engine.ListReminders(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
	assert.False(t, list[0].Triggered)
	assert.Equal(t, clock.Now().Unix(), list[0].CreatedAt)

	require.NoError(t, engine.MarkTriggered(ctx, first))
	require.NoError(t, engine.MarkTriggered(ctx, first))
	require.NoError(t, engine.UpdateReminder(ctx, first, sooner-60))

	got, err := engine.GetReminder(ctx, first)
	require.NoError(t, err)
	assert.True(t, got.Triggered)
	assert.Equal(t, sooner-60, got.RemindAt)

	require.NoError(t, engine.DeleteReminder(ctx, second))
	all, err := engine.ListAllReminders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first, all[0].ID)
}

func TestReminderErrors(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	_, err := engine.CreateReminder(ctx, 123, 1_800_000_000)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	noteID, err := engine.CreateNote(ctx, "n", nil)
	require.NoError(t, err)
	_, err = engine.CreateReminder(ctx, noteID, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	assert.True(t, apperr.Is(engine.UpdateReminder(ctx, 5, 1_800_000_000), apperr.KindNotFound))
	assert.True(t, apperr.Is(engine.UpdateReminder(ctx, 5, -1), apperr.KindValidation))
	assert.True(t, apperr.Is(engine.DeleteReminder(ctx, 5), apperr.KindNotFound))
	assert.True(t, apperr.Is(engine.MarkTriggered(ctx, 5), apperr.KindNotFound))
	_, err = engine.GetReminder(ctx, 5)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListDueRemindersEligibility(t *testing.T) {
	engine, clock := setupEngine(t)
	ctx := context.Background()
	now := clock.Now()

	live, err := engine.CreateNote(ctx, "live note", nil)
	require.NoError(t, err)
	trashed, err := engine.CreateNote(ctx, "trashed note", nil)
	require.NoError(t, err)

	due, err := engine.CreateReminder(ctx, live, now.Add(-time.Minute).Unix())
	require.NoError(t, err)
	triggered, err := engine.CreateReminder(ctx, live, now.Add(-2*time.Minute).Unix())
	require.NoError(t, err)
	future, err := engine.CreateReminder(ctx, live, now.Add(time.Hour).Unix())
	require.NoError(t, err)
	_, err = engine.CreateReminder(ctx, trashed, now.Add(-time.Minute).Unix())
	require.NoError(t, err)

	require.NoError(t, engine.MarkTriggered(ctx, triggered))
	_, err = engine.MoveToTrash(ctx, []int64{trashed})
	require.NoError(t, err)

	pending, err := engine.ListDueReminders(ctx, DueQuery{})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, due, pending[0].Reminder.ID)
	assert.Equal(t, future, pending[1].Reminder.ID)
	assert.Equal(t, "live note", pending[0].Note.Content)
	assert.Equal(t, live, pending[0].Note.ID)

	bounded, err := engine.ListDueReminders(ctx, DueQuery{Until: now.Unix()})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, due, bounded[0].Reminder.ID)

	capped, err := engine.ListDueReminders(ctx, DueQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, capped, 1)

	_, err = engine.RestoreFromTrash(ctx, []int64{trashed})
	require.NoError(t, err)
	restored, err := engine.ListDueReminders(ctx, DueQuery{Until: now.Unix()})
	require.NoError(t, err)
	assert.Len(t, restored, 2)
}
