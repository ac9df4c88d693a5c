package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/dustin/go-humanize"

	"github.com/sandeepkv93/stickynotes/internal/storage"
	"github.com/sandeepkv93/stickynotes/internal/views"
)

const (
	listHeight    = 16
	previewHeight = 14
	editorHeight  = 10
	timeLayout    = "2006-01-02 15:04"
)

func (m *Model) initBubbleComponents() {
	width := m.cfg.PaneWidth - 2

	m.noteList = list.New([]list.Item{}, list.NewDefaultDelegate(), width, listHeight)
	m.noteList.SetShowHelp(false)
	m.noteList.SetShowStatusBar(false)
	m.noteList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Note", Width: 18},
		{Title: "When", Width: 16},
		{Title: "State", Width: 8},
	}
	m.reminderTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(listHeight))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = width - 4

	m.editor = textarea.New()
	m.editor.SetWidth(width)
	m.editor.SetHeight(editorHeight)
	m.editor.ShowLineNumbers = false
	m.editor.Placeholder = "Note content (markdown)"

	m.helpModel = help.New()
	m.preview = viewport.New(width, previewHeight)
}

func (m *Model) resize(paneWidth int) {
	if paneWidth < 30 {
		paneWidth = 30
	}
	m.cfg.PaneWidth = paneWidth
	width := paneWidth - 2
	m.noteList.SetSize(width, listHeight)
	m.commandInput.Width = width - 4
	m.editor.SetWidth(width)
	m.preview.Width = width
	m.previewKey = ""
}

func (m *Model) syncBubbleData() {
	now := m.cfg.Now()

	var source []storage.Note
	switch m.CurrentView {
	case ViewTrash:
		source = m.Trash
		m.noteList.Title = "Trash"
	default:
		source = m.Notes
		m.noteList.Title = "Notes"
	}
	items := make([]list.Item, 0, len(source))
	for _, n := range source {
		items = append(items, listItem{title: m.noteRowTitle(n), description: m.noteRowDescription(n, now)})
	}
	m.noteList.SetItems(items)
	if len(items) > 0 {
		m.noteList.Select(m.cursor())
	}

	rows := make([]table.Row, 0, len(m.Reminders))
	for _, r := range m.Reminders {
		state := "pending"
		if r.Triggered {
			state = "done"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", r.ID),
			m.noteLabel(r.NoteID),
			time.Unix(r.RemindAt, 0).In(now.Location()).Format(timeLayout),
			state,
		})
	}
	m.reminderTable.SetRows(rows)
	if m.CurrentView == ViewReminders && len(rows) > 0 {
		m.reminderTable.SetCursor(m.cursor())
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}

	if note, ok := m.selectedNote(); ok {
		key := fmt.Sprintf("%d:%d:%d", note.ID, note.UpdatedAt, m.cfg.PaneWidth)
		if key != m.previewKey {
			md := note.Content
			if strings.TrimSpace(md) == "" {
				md = "_Empty note_"
			}
			m.preview.SetContent(views.RenderMarkdown(md, m.preview.Width-2))
			m.preview.GotoTop()
			m.previewKey = key
		}
	} else if m.previewKey != "" {
		m.preview.SetContent("")
		m.previewKey = ""
	}
}

func (m Model) noteRowTitle(n storage.Note) string {
	title := noteTitle(n.Content)
	if n.IsPinned {
		title = "[pin] " + title
	}
	return title
}

func (m Model) noteRowDescription(n storage.Note, now time.Time) string {
	parts := []string{fmt.Sprintf("#%d", n.ID)}
	if name := m.categoryName(n.CategoryID); name != "" {
		parts = append(parts, name)
	}
	if n.Color != nil {
		parts = append(parts, *n.Color)
	}
	if n.DeletedAt != nil {
		parts = append(parts, "trashed "+relative(*n.DeletedAt, now))
	} else {
		parts = append(parts, "updated "+relative(n.UpdatedAt, now))
	}
	return strings.Join(parts, " · ")
}

func (m Model) categoryName(id *int64) string {
	if id == nil {
		return ""
	}
	for _, c := range m.Categories {
		if c.ID == *id {
			return c.Name
		}
	}
	return ""
}

func (m Model) noteLabel(noteID int64) string {
	for _, n := range m.Notes {
		if n.ID == noteID {
			return fmt.Sprintf("#%d %s", n.ID, noteTitle(n.Content))
		}
	}
	return fmt.Sprintf("#%d", noteID)
}

func (m Model) renderLeftPane() string {
	switch m.CurrentView {
	case ViewReminders:
		return views.RenderRemindersPanel(views.RemindersPanelData{TableView: m.reminderTable.View()})
	default:
		return views.RenderNotesPanel(views.NotesPanelData{
			Heading:  string(m.CurrentView),
			Filter:   m.filterSummary(),
			ListView: m.renderNoteListView(),
		})
	}
}

func (m Model) renderNoteListView() string {
	if m.currentLen() == 0 {
		return "(empty)"
	}
	return m.noteList.View()
}

func (m Model) renderRightPane() string {
	if m.Editor.Active {
		return views.RenderEditor(views.EditorData{Active: true, NoteID: m.Editor.NoteID, EditorView: m.editor.View()}) +
			m.renderCommandPalette() + m.renderHelpIfVisible()
	}
	return m.renderNoteDetail() + m.renderCommandPalette() + m.renderHelpIfVisible()
}

func (m Model) renderNoteDetail() string {
	note, ok := m.selectedNote()
	if !ok {
		return views.RenderNoteDetail(views.NoteDetailData{})
	}
	now := m.cfg.Now()
	data := views.NoteDetailData{
		ID:          note.ID,
		Category:    m.categoryName(note.CategoryID),
		Pinned:      note.IsPinned,
		Created:     absolute(note.CreatedAt, now),
		Updated:     absolute(note.UpdatedAt, now),
		Reminders:   m.pendingRemindersFor(note.ID),
		PreviewView: m.preview.View(),
	}
	if note.Color != nil {
		data.Color = *note.Color
	}
	if note.DeletedAt != nil {
		data.Deleted = absolute(*note.DeletedAt, now)
	}
	return views.RenderNoteDetail(data)
}

func (m Model) pendingRemindersFor(noteID int64) int {
	count := 0
	for _, r := range m.Reminders {
		if r.NoteID == noteID && !r.Triggered {
			count++
		}
	}
	return count
}

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return views.RenderCommandPalette(true, m.Palette.Input)
}

func (m Model) renderPendingView() string {
	if len(m.Pending) == 0 {
		return ""
	}
	now := m.cfg.Now()
	items := make([]views.PendingReminderData, 0, len(m.Pending))
	for _, n := range m.Pending {
		items = append(items, views.PendingReminderData{
			ReminderID: n.ReminderID,
			NoteID:     n.NoteID,
			Title:      n.Title(),
			Due:        relative(n.RemindAt, now),
		})
	}
	return views.RenderPendingReminders(items)
}

func (m Model) filterSummary() string {
	var parts []string
	if m.CurrentView == ViewNotes {
		parts = append(parts, "sort "+string(m.Sort))
		if m.Search != "" {
			parts = append(parts, fmt.Sprintf("search %q", m.Search))
		}
		if name := m.categoryName(m.CategoryID); name != "" {
			parts = append(parts, "category "+name)
		}
	}
	return strings.Join(parts, ", ")
}

func relative(unix int64, now time.Time) string {
	return humanize.RelTime(time.Unix(unix, 0), now, "ago", "from now")
}

func absolute(unix int64, now time.Time) string {
	at := time.Unix(unix, 0).In(now.Location())
	return fmt.Sprintf("%s (%s)", at.Format(timeLayout), relative(unix, now))
}
