package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/stickynotes/internal/model"
	"github.com/sandeepkv93/stickynotes/internal/views"
)

func (m Model) Init() tea.Cmd {
	return waitForReminderCmd(m.notifications)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize((typed.Width - 6) / 2)
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		if m.Editor.Active {
			return m.handleEditorKey(typed)
		}

		switch keyStr := typed.String(); keyStr {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Notes:
			m.CurrentView = ViewNotes
			return m, nil
		case m.Keys.Trash:
			m.CurrentView = ViewTrash
			return m, nil
		case m.Keys.Reminders:
			m.CurrentView = ViewReminders
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		case "j", "down":
			m.moveCursor(1)
			return m, nil
		case "k", "up":
			m.moveCursor(-1)
			return m, nil
		case "g", "home":
			m.setCursor(0)
			return m, nil
		case "G", "end":
			m.setCursor(m.currentLen() - 1)
			return m, nil
		case "pgdown", "pgup", "ctrl+d", "ctrl+u":
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(typed)
			return m, cmd
		case "ctrl+r":
			m.reload()
			if !m.Status.IsError {
				m.Status = StatusBar{Text: "reloaded"}
			}
			return m, nil
		case "a":
			return m.acknowledgeKey(), nil
		case "s":
			if m.CurrentView == ViewNotes {
				m.Sort = nextSort(m.Sort)
				m.reload()
				m.Status = StatusBar{Text: fmt.Sprintf("sorted by %s", m.Sort)}
			}
			return m, nil
		}
		switch m.CurrentView {
		case ViewNotes:
			return m.handleNotesKey(typed)
		case ViewTrash:
			return m.handleTrashKey(typed), nil
		case ViewReminders:
			return m.handleRemindersKey(typed), nil
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case ReloadMsg:
		m.reload()
		return m, nil
	case ReminderDueMsg:
		m.receiveReminder(typed.Notification)
		return m, waitForReminderCmd(m.notifications)
	}
	return m, nil
}

func (m Model) handleNotesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		return m.openEditor(0, "")
	case "e", "enter":
		if note, ok := m.selectedNote(); ok {
			return m.openEditor(note.ID, note.Content)
		}
	case "p":
		if note, ok := m.selectedNote(); ok {
			pinned, err := m.store.TogglePin(m.ctx, note.ID)
			if err != nil {
				m.fail(err)
				return m, nil
			}
			m.reload()
			m.selectNote(note.ID)
			m.Status = StatusBar{Text: fmt.Sprintf("note %d %s", note.ID, pinnedWord(pinned))}
		}
	case "d", "delete":
		if note, ok := m.selectedNote(); ok {
			if _, err := m.store.MoveToTrash(m.ctx, []int64{note.ID}); err != nil {
				m.fail(err)
				return m, nil
			}
			m.reload()
			m.Status = StatusBar{Text: fmt.Sprintf("note %d moved to trash", note.ID)}
		}
	}
	return m, nil
}

func (m Model) handleTrashKey(msg tea.KeyMsg) Model {
	note, ok := m.selectedNote()
	switch msg.String() {
	case "r":
		if !ok {
			return m
		}
		if _, err := m.store.RestoreFromTrash(m.ctx, []int64{note.ID}); err != nil {
			m.fail(err)
			return m
		}
		m.reload()
		m.Status = StatusBar{Text: fmt.Sprintf("note %d restored", note.ID)}
	case "D", "delete":
		if !ok {
			return m
		}
		if _, err := m.store.PermanentlyDelete(m.ctx, []int64{note.ID}); err != nil {
			m.fail(err)
			return m
		}
		m.reload()
		m.Status = StatusBar{Text: fmt.Sprintf("note %d deleted permanently", note.ID)}
	case "x":
		m = m.cleanupTrash(m.cfg.RetentionDays)
	}
	return m
}

func (m Model) handleRemindersKey(msg tea.KeyMsg) Model {
	r, ok := m.selectedReminder()
	if !ok {
		return m
	}
	switch msg.String() {
	case "d", "delete":
		if err := m.store.DeleteReminder(m.ctx, r.ID); err != nil {
			m.fail(err)
			return m
		}
		m.dropPending(r.ID)
		m.reload()
		m.Status = StatusBar{Text: fmt.Sprintf("reminder %d deleted", r.ID)}
	case "enter":
		m.CurrentView = ViewNotes
		m.selectNote(r.NoteID)
	}
	return m
}

func (m Model) openEditor(noteID int64, content string) (Model, tea.Cmd) {
	m.Editor = EditorState{Active: true, NoteID: noteID}
	m.editor.SetValue(content)
	m.Status = StatusBar{Text: "editing"}
	return m, m.editor.Focus()
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEditor()
		m.Status = StatusBar{Text: "edit cancelled"}
		return m, nil
	case "ctrl+s":
		return m.saveEditor(), nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) saveEditor() Model {
	content := m.editor.Value()
	id := m.Editor.NoteID
	if id == 0 {
		newID, err := m.store.CreateNote(m.ctx, content, nil)
		if err != nil {
			m.fail(err)
			return m
		}
		id = newID
		m.Status = StatusBar{Text: fmt.Sprintf("note %d created", id)}
	} else {
		if err := m.updateContent(id, content); err != nil {
			m.fail(err)
			return m
		}
		m.Status = StatusBar{Text: fmt.Sprintf("note %d saved", id)}
	}
	m.closeEditor()
	m.CurrentView = ViewNotes
	m.reload()
	m.selectNote(id)
	return m
}

func (m *Model) closeEditor() {
	m.Editor = EditorState{}
	m.editor.Blur()
	m.editor.Reset()
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("stickynotes | view: %s | notes: %d | trash: %d | reminders due: %d", m.CurrentView, len(m.Notes), len(m.Trash), len(m.Pending)),
		LeftPane:     m.renderLeftPane(),
		RightPane:    m.renderRightPane(),
		StatusLine:   status,
		Notification: m.renderPendingView(),
		Footer: fmt.Sprintf("keys: %s notes | %s trash | %s reminders | / cmd | %s help | %s quit",
			m.Keys.Notes, m.Keys.Trash, m.Keys.Reminders, m.Keys.Help, m.Keys.Quit),
		PaneWidth: m.cfg.PaneWidth,
	})
}

func nextSort(s model.NoteSort) model.NoteSort {
	order := []model.NoteSort{model.SortCreatedDesc, model.SortCreatedAsc, model.SortUpdatedDesc, model.SortUpdatedAsc}
	for i, v := range order {
		if v == s {
			return order[(i+1)%len(order)]
		}
	}
	return model.DefaultNoteSort
}

func pinnedWord(pinned bool) string {
	if pinned {
		return "pinned"
	}
	return "unpinned"
}
