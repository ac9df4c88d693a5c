package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/model"
)

var testKey = []byte("0123456789abcdefghijklmnopqrstuv")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "stickynotes-test.db")
	engine, err := Open(context.Background(), path, testKey, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine, clock
}

func strPtr(v string) *string { return &v }

func TestOpenCreatesEncryptedFile(t *testing.T) {
	engine, _ := setupEngine(t)
	_, err := engine.CreateNote(context.Background(), "secret plans", nil)
	require.NoError(t, err)

	path := engine.Path()
	require.NoError(t, engine.Close())

	encrypted, err := IsEncrypted(path)
	require.NoError(t, err)
	assert.True(t, encrypted)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret plans")
	assert.NotContains(t, string(raw), "SQLite format 3")
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "keyed.db")
	engine, err := Open(ctx, path, testKey)
	require.NoError(t, err)
	require.NoError(t, engine.Close())

	_, err = Open(ctx, path, []byte("ZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindEncryptionKey, apperr.KindOf(err))

	_, err = Open(ctx, path, nil)
	assert.Equal(t, apperr.KindEncryptionKey, apperr.KindOf(err))
}

func TestInitReplacesConnection(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	engine, err := Open(ctx, filepath.Join(dir, "a.db"), testKey)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	_, err = engine.CreateNote(ctx, "in a", nil)
	require.NoError(t, err)

	require.NoError(t, engine.Init(ctx, filepath.Join(dir, "b.db"), testKey))
	notes, err := engine.ListNotes(ctx, NoteQuery{})
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Equal(t, filepath.Join(dir, "b.db"), engine.Path())

	// Schema creation is idempotent.
	require.NoError(t, engine.Init(ctx, filepath.Join(dir, "a.db"), testKey))
	notes, err = engine.ListNotes(ctx, NoteQuery{})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "in a", notes[0].Content)
}

func TestOperationsBeforeInit(t *testing.T) {
	engine := New()
	_, err := engine.ListNotes(context.Background(), NoteQuery{})
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
}

func TestForeignKeysAreEnforced(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	engine.mu.Lock()
	_, err := engine.db.ExecContext(ctx, `INSERT INTO reminders (note_id, remind_at, triggered, created_at) VALUES (999, 1, 0, 1)`)
	engine.mu.Unlock()

	require.Error(t, err)
	assert.Equal(t, apperr.KindIntegrityViolation, apperr.KindOf(classify("insert reminder", err)))
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()
	id, err := engine.CreateNote(ctx, "shared", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = engine.TogglePin(ctx, id)
				return
			}
			_, _ = engine.ListDueReminders(ctx, DueQuery{})
		}(i)
	}
	wg.Wait()

	// Ten toggles bring the flag back to where it started.
	got, err := engine.GetNote(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsPinned)
}

func TestApplyPagination(t *testing.T) {
	cases := []struct {
		limit, offset int
		want          string
		args          int
	}{
		{0, 0, "", 0},
		{5, 0, " LIMIT ?", 1},
		{5, 10, " LIMIT ? OFFSET ?", 2},
		{0, 10, " LIMIT -1 OFFSET ?", 1},
	}
	for _, tc := range cases {
		args := make([]any, 0)
		assert.Equal(t, tc.want, applyPagination(&args, tc.limit, tc.offset))
		assert.Len(t, args, tc.args)
	}
}

func TestDataDirFor(t *testing.T) {
	home := func() (string, error) { return "/home/ada", nil }
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	dir, err := dataDirFor("linux", getenv, home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/ada", ".local", "share", AppDirName), dir)

	env["XDG_DATA_HOME"] = "/data"
	dir, err = dataDirFor("linux", getenv, home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", AppDirName), dir)

	dir, err = dataDirFor("darwin", getenv, home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/ada", "Library", "Application Support", AppDirName), dir)

	env["AppData"] = `C:\Users\ada\AppData\Roaming`
	dir, err = dataDirFor("windows", getenv, home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(`C:\Users\ada\AppData\Roaming`, AppDirName), dir)
}

func TestListNotesRejectsUnknownSort(t *testing.T) {
	engine, _ := setupEngine(t)
	_, err := engine.ListNotes(context.Background(), NoteQuery{Sort: model.NoteSort("title")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
