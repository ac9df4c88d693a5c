package update

import (
	"fmt"

	"github.com/sandeepkv93/stickynotes/internal/storage"
)

// reload refreshes every list from the store and keeps cursors in range.
func (m *Model) reload() {
	if m.store == nil {
		return
	}
	notes, err := m.store.ListNotes(m.ctx, storage.NoteQuery{CategoryID: m.CategoryID, Search: m.Search, Sort: m.Sort})
	if err != nil {
		m.fail(err)
		return
	}
	trash, err := m.store.ListTrash(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	reminders, err := m.store.ListAllReminders(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	categories, err := m.store.ListCategories(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	m.Notes, m.Trash, m.Reminders, m.Categories = notes, trash, reminders, categories
	m.clampCursors()
}

func (m *Model) fail(err error) {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
}

// selectNote moves the cursor of the current note list onto id when present.
func (m *Model) selectNote(id int64) {
	source := m.Notes
	if m.CurrentView == ViewTrash {
		source = m.Trash
	}
	for i, n := range source {
		if n.ID == id {
			m.Cursor[m.CurrentView] = i
			return
		}
	}
}

// updateContent replaces a note's content and keeps its other fields.
func (m Model) updateContent(id int64, content string) error {
	note, err := m.store.GetNote(m.ctx, id)
	if err != nil {
		return err
	}
	return m.store.UpdateNote(m.ctx, storage.NoteUpdate{
		ID:             note.ID,
		Content:        content,
		ScreenshotPath: note.ScreenshotPath,
		IsPinned:       note.IsPinned,
		Color:          note.Color,
		CategoryID:     note.CategoryID,
	})
}

func (m Model) cleanupTrash(days int) Model {
	removed, err := m.store.CleanupTrash(m.ctx, days)
	if err != nil {
		m.fail(err)
		return m
	}
	m.reload()
	m.Status = StatusBar{Text: fmt.Sprintf("cleanup removed %d note(s) older than %d day(s)", removed, days)}
	return m
}
