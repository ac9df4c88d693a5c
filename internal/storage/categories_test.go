package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

func TestCategoryCRUD(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	work, err := engine.CreateCategory(ctx, "  Work ", strPtr("#ff0000"))
	require.NoError(t, err)
	home, err := engine.CreateCategory(ctx, "home", nil)
	require.NoError(t, err)

	got, err := engine.GetCategory(ctx, work)
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Name)
	assert.Equal(t, "#ff0000", *got.Color)

	require.NoError(t, engine.UpdateCategory(ctx, work, "Office", nil))
	got, err = engine.GetCategory(ctx, work)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Name)
	assert.Nil(t, got.Color)

	list, err := engine.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, home, list[0].ID)
	assert.Equal(t, work, list[1].ID)

	_, err = engine.CreateCategory(ctx, "   ", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.True(t, apperr.Is(engine.UpdateCategory(ctx, 999, "x", nil), apperr.KindNotFound))
	_, err = engine.GetCategory(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteCategoryNullsReferences(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	cat, err := engine.CreateCategory(ctx, "Ideas", nil)
	require.NoError(t, err)
	active, err := engine.CreateNote(ctx, "tagged", nil)
	require.NoError(t, err)
	trashed, err := engine.CreateNote(ctx, "tagged and trashed", nil)
	require.NoError(t, err)
	for _, id := range []int64{active, trashed} {
		require.NoError(t, engine.SetNoteCategory(ctx, id, &cat))
	}
	_, err = engine.MoveToTrash(ctx, []int64{trashed})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteCategory(ctx, cat))

	for _, id := range []int64{active, trashed} {
		note, getErr := engine.GetNote(ctx, id)
		require.NoError(t, getErr)
		assert.Nil(t, note.CategoryID)
	}
	list, err := engine.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.True(t, apperr.Is(engine.DeleteCategory(ctx, cat), apperr.KindNotFound))
}

func TestDeleteCategoryRollsBackOnFailure(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	cat, err := engine.CreateCategory(ctx, "Locked", nil)
	require.NoError(t, err)
	id, err := engine.CreateNote(ctx, "tagged", nil)
	require.NoError(t, err)
	require.NoError(t, engine.SetNoteCategory(ctx, id, &cat))

	engine.mu.Lock()
	_, err = engine.db.ExecContext(ctx, `
		CREATE TRIGGER block_category_delete BEFORE DELETE ON categories
		BEGIN SELECT RAISE(ABORT, 'blocked'); END`)
	engine.mu.Unlock()
	require.NoError(t, err)

	require.Error(t, engine.DeleteCategory(ctx, cat))

	note, err := engine.GetNote(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, note.CategoryID)
	assert.Equal(t, cat, *note.CategoryID)
	_, err = engine.GetCategory(ctx, cat)
	require.NoError(t, err)
}
