package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/commands"
	"github.com/sandeepkv93/stickynotes/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.fail(err)
		return m
	}

	res, err := commands.Execute(cmd, m.paletteHandlers())
	if err != nil {
		m.fail(err)
		m.reload()
		return m
	}
	m.reload()
	m.Status = StatusBar{Text: res.Message}
	return m
}

// paletteHandlers binds command handlers to m. Handlers mutate m in place,
// so the returned set must be used before m is copied.
func (m *Model) paletteHandlers() commands.Handlers {
	return commands.Handlers{
		New: func(a commands.NewArgs) (commands.Result, error) {
			id, err := m.store.CreateNote(m.ctx, a.Content, nil)
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewNotes
			m.reload()
			m.selectNote(id)
			return commands.Result{Message: fmt.Sprintf("note %d created", id)}, nil
		},
		Pin: func(a commands.TargetArgs) (commands.Result, error) {
			ids, err := m.resolveTarget("pin", a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			var msgs []string
			for _, id := range ids {
				pinned, err := m.store.TogglePin(m.ctx, id)
				if err != nil {
					return commands.Result{}, err
				}
				msgs = append(msgs, fmt.Sprintf("note %d %s", id, pinnedWord(pinned)))
			}
			return commands.Result{Message: strings.Join(msgs, ", ")}, nil
		},
		Trash: func(a commands.TargetArgs) (commands.Result, error) {
			ids, err := m.resolveTarget("trash", a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			n, err := m.store.MoveToTrash(m.ctx, ids)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("moved %d note(s) to trash", n)}, nil
		},
		Restore: func(a commands.TargetArgs) (commands.Result, error) {
			ids, err := m.resolveTarget("restore", a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			n, err := m.store.RestoreFromTrash(m.ctx, ids)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("restored %d note(s)", n)}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.Search = strings.TrimSpace(a.Text)
			m.CurrentView = ViewNotes
			m.Cursor[ViewNotes] = 0
			if m.Search == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("searching for %q", m.Search)}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			m.Sort = a.Sort
			m.CurrentView = ViewNotes
			return commands.Result{Message: fmt.Sprintf("sorted by %s", a.Sort)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			return m.show(a)
		},
		Color: func(a commands.ColorArgs) (commands.Result, error) {
			ids, err := m.resolveTarget("color", a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			for _, id := range ids {
				if err := m.store.SetNoteColor(m.ctx, id, a.Color); err != nil {
					return commands.Result{}, err
				}
			}
			if a.Color == nil {
				return commands.Result{Message: fmt.Sprintf("cleared color on %d note(s)", len(ids))}, nil
			}
			return commands.Result{Message: fmt.Sprintf("colored %d note(s) %s", len(ids), *a.Color)}, nil
		},
		Remind: func(a commands.RemindArgs) (commands.Result, error) {
			ids, err := m.resolveTarget("remind", a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			at, err := model.ParseWhen(a.When, m.cfg.Now())
			if err != nil {
				return commands.Result{}, apperr.New(apperr.KindValidation, "remind", err)
			}
			for _, id := range ids {
				if _, err := m.store.CreateReminder(m.ctx, id, at.Unix()); err != nil {
					return commands.Result{}, err
				}
			}
			return commands.Result{Message: fmt.Sprintf("reminder set for %s (%s)", at.Format(timeLayout), relative(at.Unix(), m.cfg.Now()))}, nil
		},
		Ack: func(a commands.AckArgs) (commands.Result, error) {
			ids := a.ReminderIDs
			if a.All {
				ids = nil
				for _, p := range m.Pending {
					ids = append(ids, p.ReminderID)
				}
			}
			if len(ids) == 0 {
				return commands.Result{Message: "no reminders to acknowledge"}, nil
			}
			n, err := m.acknowledge(ids)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("acknowledged %d reminder(s)", n)}, nil
		},
		Cleanup: func(a commands.CleanupArgs) (commands.Result, error) {
			days := a.Days
			if days < 0 {
				days = m.cfg.RetentionDays
			}
			n, err := m.store.CleanupTrash(m.ctx, days)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("cleanup removed %d note(s) older than %d day(s)", n, days)}, nil
		},
	}
}

func (m *Model) show(a commands.ShowArgs) (commands.Result, error) {
	switch a.Subject {
	case "trash":
		m.CurrentView = ViewTrash
		return commands.Result{Message: "showing trash"}, nil
	case "reminders":
		m.CurrentView = ViewReminders
		return commands.Result{Message: "showing reminders"}, nil
	}
	m.CurrentView = ViewNotes
	m.Cursor[ViewNotes] = 0
	if a.Category == "" {
		m.CategoryID = nil
		return commands.Result{Message: "showing all notes"}, nil
	}
	for _, c := range m.Categories {
		if strings.EqualFold(c.Name, a.Category) {
			id := c.ID
			m.CategoryID = &id
			return commands.Result{Message: fmt.Sprintf("showing category %s", c.Name)}, nil
		}
	}
	return commands.Result{}, apperr.NotFound("show", "category %q not found", a.Category)
}

// resolveTarget maps a palette target to note ids, using the highlighted
// note for "selected".
func (m *Model) resolveTarget(op string, t commands.Target) ([]int64, error) {
	if !t.Selected {
		return t.IDs, nil
	}
	note, ok := m.selectedNote()
	if !ok {
		return nil, apperr.Validation(op, "no note selected")
	}
	return []int64{note.ID}, nil
}
