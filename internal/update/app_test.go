package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/stickynotes/internal/model"
	"github.com/sandeepkv93/stickynotes/internal/scheduler"
	"github.com/sandeepkv93/stickynotes/internal/storage"
)

var testNow = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *storage.Engine {
	t.Helper()
	return newTestStoreWithClock(t, func() time.Time { return testNow })
}

func newTestStoreWithClock(t *testing.T, now func() time.Time) *storage.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tui.db")
	store, err := storage.Open(context.Background(), path, []byte("tui-test-key-0123456789abcdefghij"),
		storage.WithClock(now))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestModel(t *testing.T, store *storage.Engine, ch <-chan scheduler.Notification) Model {
	t.Helper()
	cfg := DefaultRuntimeConfig()
	cfg.Now = func() time.Time { return testNow }
	cfg.RetentionDays = 7
	return NewModel(context.Background(), store, ch, cfg)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func runPalette(t *testing.T, m Model, input string) Model {
	t.Helper()
	m = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatalf("expected palette to open")
	}
	m = press(t, m, input, "enter")
	if m.Palette.Active {
		t.Fatalf("expected palette to close after enter")
	}
	return m
}

func mustCreate(t *testing.T, store *storage.Engine, content string) int64 {
	t.Helper()
	id, err := store.CreateNote(context.Background(), content, nil)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	return id
}

func TestNewModelDefaults(t *testing.T) {
	store := newTestStore(t)
	mustCreate(t, store, "first")
	m := newTestModel(t, store, nil)

	if m.CurrentView != ViewNotes {
		t.Fatalf("expected default view %q, got %q", ViewNotes, m.CurrentView)
	}
	if m.Sort != model.DefaultNoteSort {
		t.Fatalf("expected default sort %q, got %q", model.DefaultNoteSort, m.Sort)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if len(m.Notes) != 1 {
		t.Fatalf("expected notes loaded from store, got %d", len(m.Notes))
	}
	if m.Init() != nil {
		t.Fatalf("expected no init command without a reminder channel")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	m = press(t, m, "2")
	if m.CurrentView != ViewTrash {
		t.Fatalf("expected trash view, got %q", m.CurrentView)
	}
	m = press(t, m, "3")
	if m.CurrentView != ViewReminders {
		t.Fatalf("expected reminders view, got %q", m.CurrentView)
	}
	m = press(t, m, "1")
	if m.CurrentView != ViewNotes {
		t.Fatalf("expected notes view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	updated, _ := m.Update(SwitchViewMsg{View: ViewTrash})
	next := updated.(Model)
	if next.CurrentView != ViewTrash {
		t.Fatalf("expected trash view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewTrash {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestCursorMovementClamps(t *testing.T) {
	store := newTestStore(t)
	for _, c := range []string{"a", "b", "c"} {
		mustCreate(t, store, c)
	}
	m := newTestModel(t, store, nil)
	m = press(t, m, "j", "j", "j", "j")
	if m.cursor() != 2 {
		t.Fatalf("expected cursor clamped to 2, got %d", m.cursor())
	}
	m = press(t, m, "k", "k", "k")
	if m.cursor() != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.cursor())
	}
	m = press(t, m, "G")
	if m.cursor() != 2 {
		t.Fatalf("expected cursor at end, got %d", m.cursor())
	}
}

func TestPaletteNewCreatesAndSelectsNote(t *testing.T) {
	store := newTestStore(t)
	mustCreate(t, store, "older")
	m := newTestModel(t, store, nil)

	m = runPalette(t, m, "new buy milk")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	note, ok := m.selectedNote()
	if !ok || note.Content != "buy milk" {
		t.Fatalf("expected new note selected, got %+v (ok=%v)", note, ok)
	}
	if len(m.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(m.Notes))
	}
}

func TestPaletteUnknownCommandSetsError(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	m = runPalette(t, m, "frobnicate")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unsupported command") {
		t.Fatalf("expected unsupported command error, got %+v", m.Status)
	}
}

func TestPaletteEscClosesWithoutRunning(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	m = press(t, m, "/", "new draft", "esc")
	if m.Palette.Active || len(m.Notes) != 0 {
		t.Fatalf("expected palette closed and nothing created, notes=%d", len(m.Notes))
	}
}

func TestPinKeyTogglesSelectedNote(t *testing.T) {
	store := newTestStore(t)
	id := mustCreate(t, store, "pin me")
	m := newTestModel(t, store, nil)

	m = press(t, m, "p")
	got, err := store.GetNote(context.Background(), id)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if !got.IsPinned {
		t.Fatalf("expected note pinned")
	}
	if !strings.Contains(m.Status.Text, "pinned") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestTrashAndRestoreKeys(t *testing.T) {
	store := newTestStore(t)
	id := mustCreate(t, store, "disposable")
	m := newTestModel(t, store, nil)

	m = press(t, m, "d")
	if len(m.Notes) != 0 || len(m.Trash) != 1 {
		t.Fatalf("expected note in trash, notes=%d trash=%d", len(m.Notes), len(m.Trash))
	}

	m = press(t, m, "2", "r")
	if len(m.Trash) != 0 || len(m.Notes) != 1 || m.Notes[0].ID != id {
		t.Fatalf("expected note restored, notes=%+v trash=%+v", m.Notes, m.Trash)
	}
}

func TestPermanentDeleteFromTrash(t *testing.T) {
	store := newTestStore(t)
	id := mustCreate(t, store, "gone")
	if _, err := store.MoveToTrash(context.Background(), []int64{id}); err != nil {
		t.Fatalf("trash: %v", err)
	}
	m := newTestModel(t, store, nil)
	m = press(t, m, "2", "D")
	if len(m.Trash) != 0 {
		t.Fatalf("expected trash empty, got %d", len(m.Trash))
	}
	if _, err := store.GetNote(context.Background(), id); err == nil {
		t.Fatalf("expected note deleted")
	}
}

func TestEditorCreatesAndUpdatesNote(t *testing.T) {
	store := newTestStore(t)
	m := newTestModel(t, store, nil)

	m = press(t, m, "n")
	if !m.Editor.Active || m.Editor.NoteID != 0 {
		t.Fatalf("expected editor for new note, got %+v", m.Editor)
	}
	m = press(t, m, "hello", "ctrl+s")
	if m.Editor.Active {
		t.Fatalf("expected editor closed after save")
	}
	if len(m.Notes) != 1 || m.Notes[0].Content != "hello" {
		t.Fatalf("expected saved note, got %+v", m.Notes)
	}

	id := m.Notes[0].ID
	m = press(t, m, "e")
	if m.Editor.NoteID != id {
		t.Fatalf("expected editing note %d, got %d", id, m.Editor.NoteID)
	}
	m = press(t, m, " world", "ctrl+s")
	got, err := store.GetNote(context.Background(), id)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got.Content != "hello world" {
		t.Fatalf("expected updated content, got %q", got.Content)
	}
}

func TestEditorEscDiscards(t *testing.T) {
	store := newTestStore(t)
	m := newTestModel(t, store, nil)
	m = press(t, m, "n", "draft", "esc")
	if m.Editor.Active || len(m.Notes) != 0 {
		t.Fatalf("expected nothing saved, notes=%d", len(m.Notes))
	}
}

func TestPaletteRemindUsesSelectedNote(t *testing.T) {
	store := newTestStore(t)
	id := mustCreate(t, store, "call mom")
	m := newTestModel(t, store, nil)

	m = runPalette(t, m, "remind +30m")
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	rems, err := store.ListReminders(context.Background(), id)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(rems) != 1 || rems[0].RemindAt != testNow.Add(30*time.Minute).Unix() {
		t.Fatalf("unexpected reminders: %+v", rems)
	}
	if len(m.Reminders) != 1 {
		t.Fatalf("expected reminders reloaded, got %d", len(m.Reminders))
	}
}

func TestPaletteSearchAndShowCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	work, err := store.CreateCategory(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	a := mustCreate(t, store, "quarterly report")
	mustCreate(t, store, "grocery list")
	if err := store.SetNoteCategory(ctx, a, &work); err != nil {
		t.Fatalf("set category: %v", err)
	}
	m := newTestModel(t, store, nil)

	m = runPalette(t, m, "search grocery")
	if len(m.Notes) != 1 || m.Notes[0].Content != "grocery list" {
		t.Fatalf("unexpected search result: %+v", m.Notes)
	}
	m = runPalette(t, m, "search")
	m = runPalette(t, m, "show notes cat:work")
	if len(m.Notes) != 1 || m.Notes[0].ID != a {
		t.Fatalf("expected category filter, got %+v", m.Notes)
	}
	m = runPalette(t, m, "show notes cat:missing")
	if !m.Status.IsError {
		t.Fatalf("expected error for unknown category")
	}
}

func TestReminderDueMsgDedupesAndRearms(t *testing.T) {
	store := newTestStore(t)
	id := mustCreate(t, store, "stand up\nand stretch")
	remID, err := store.CreateReminder(context.Background(), id, testNow.Add(-time.Minute).Unix())
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	ch := make(chan scheduler.Notification, 1)
	m := newTestModel(t, store, ch)
	if m.Init() == nil {
		t.Fatalf("expected init to wait for reminders")
	}

	n := scheduler.Notification{ReminderID: remID, NoteID: id, RemindAt: testNow.Add(-time.Minute).Unix(), NoteContent: "stand up\nand stretch"}
	updated, cmd := m.Update(ReminderDueMsg{Notification: n})
	m = updated.(Model)
	if cmd == nil {
		t.Fatalf("expected reminder wait to be re-armed")
	}
	updated, _ = m.Update(ReminderDueMsg{Notification: n})
	m = updated.(Model)
	if len(m.Pending) != 1 {
		t.Fatalf("expected one pending reminder, got %d", len(m.Pending))
	}
	if !strings.Contains(m.Status.Text, "stand up") {
		t.Fatalf("expected title in status, got %q", m.Status.Text)
	}
	if !strings.Contains(m.View(), "due reminders (1)") {
		t.Fatalf("expected pending reminders in view")
	}

	m = press(t, m, "a")
	if len(m.Pending) != 0 {
		t.Fatalf("expected pending cleared, got %d", len(m.Pending))
	}
	got, err := store.GetReminder(context.Background(), remID)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if !got.Triggered {
		t.Fatalf("expected reminder marked triggered")
	}
}

func TestWaitForReminderCmdDeliversNotification(t *testing.T) {
	ch := make(chan scheduler.Notification, 1)
	ch <- scheduler.Notification{ReminderID: 9}
	msg := waitForReminderCmd(ch)()
	due, ok := msg.(ReminderDueMsg)
	if !ok || due.Notification.ReminderID != 9 {
		t.Fatalf("unexpected message %#v", msg)
	}
	close(ch)
	if waitForReminderCmd(ch)() != nil {
		t.Fatalf("expected nil message on closed channel")
	}
	if waitForReminderCmd(nil) != nil {
		t.Fatalf("expected nil command for nil channel")
	}
}

func TestCleanupKeyUsesRetention(t *testing.T) {
	now := testNow.AddDate(0, 0, -3)
	store := newTestStoreWithClock(t, func() time.Time { return now })
	ctx := context.Background()
	id := mustCreate(t, store, "old")
	if _, err := store.MoveToTrash(ctx, []int64{id}); err != nil {
		t.Fatalf("trash: %v", err)
	}
	now = testNow

	m := newTestModel(t, store, nil)
	m = press(t, m, "2", "x")
	if len(m.Trash) != 1 {
		t.Fatalf("expected trash within retention kept, got %d", len(m.Trash))
	}
	m = runPalette(t, m, "cleanup 2")
	if len(m.Trash) != 0 {
		t.Fatalf("expected trash emptied, got %d (status %q)", len(m.Trash), m.Status.Text)
	}
}

func TestSortKeyCycles(t *testing.T) {
	m := newTestModel(t, newTestStore(t), nil)
	m = press(t, m, "s")
	if m.Sort != model.SortCreatedAsc {
		t.Fatalf("expected created_asc, got %q", m.Sort)
	}
}

func TestNoteTitle(t *testing.T) {
	cases := map[string]string{
		"":                       "(empty note)",
		"\n\n  # Heading\nbody":  "Heading",
		strings.Repeat("x", 100): strings.Repeat("x", maxTitleRunes-1) + "…",
	}
	for in, want := range cases {
		if got := noteTitle(in); got != want {
			t.Fatalf("noteTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestViewRendersHeaderAndHelp(t *testing.T) {
	store := newTestStore(t)
	mustCreate(t, store, "# Plan\n- ship it")
	m := newTestModel(t, store, nil)
	m = press(t, m, "?")
	out := m.View()
	for _, want := range []string{"stickynotes", "view: Notes", "toggle pin"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}
