package update

import (
	"github.com/sandeepkv93/stickynotes/internal/storage"
	"github.com/sandeepkv93/stickynotes/internal/views"
)

const maxTitleRunes = 48

func noteTitle(content string) string {
	return views.NoteTitle(content, maxTitleRunes)
}

func (m Model) cursor() int {
	return m.Cursor[m.CurrentView]
}

func (m Model) lenOf(v View) int {
	switch v {
	case ViewTrash:
		return len(m.Trash)
	case ViewReminders:
		return len(m.Reminders)
	default:
		return len(m.Notes)
	}
}

func (m Model) currentLen() int {
	return m.lenOf(m.CurrentView)
}

func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursor() + delta)
}

func (m *Model) setCursor(pos int) {
	n := m.currentLen()
	switch {
	case n == 0:
		pos = 0
	case pos < 0:
		pos = 0
	case pos >= n:
		pos = n - 1
	}
	m.Cursor[m.CurrentView] = pos
}

func (m *Model) clampCursors() {
	for _, v := range []View{ViewNotes, ViewTrash, ViewReminders} {
		pos := m.Cursor[v]
		n := m.lenOf(v)
		if pos >= n {
			pos = n - 1
		}
		if pos < 0 {
			pos = 0
		}
		m.Cursor[v] = pos
	}
}

func (m Model) selectedNote() (storage.Note, bool) {
	pos := m.cursor()
	switch m.CurrentView {
	case ViewTrash:
		if pos < len(m.Trash) {
			return m.Trash[pos], true
		}
	case ViewReminders:
		r, ok := m.selectedReminder()
		if !ok {
			return storage.Note{}, false
		}
		return m.findNote(r.NoteID)
	default:
		if pos < len(m.Notes) {
			return m.Notes[pos], true
		}
	}
	return storage.Note{}, false
}

func (m Model) selectedReminder() (storage.Reminder, bool) {
	if m.CurrentView != ViewReminders {
		return storage.Reminder{}, false
	}
	pos := m.cursor()
	if pos < len(m.Reminders) {
		return m.Reminders[pos], true
	}
	return storage.Reminder{}, false
}

func (m Model) findNote(id int64) (storage.Note, bool) {
	for _, n := range m.Notes {
		if n.ID == id {
			return n, true
		}
	}
	for _, n := range m.Trash {
		if n.ID == id {
			return n, true
		}
	}
	return storage.Note{}, false
}

func isKnownView(v View) bool {
	switch v {
	case ViewNotes, ViewTrash, ViewReminders:
		return true
	default:
		return false
	}
}
