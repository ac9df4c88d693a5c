package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/stickynotes/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	bindings := m.helpBindings()
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView:    m.helpModel.View(helpKeyMap{short: bindings, full: [][]key.Binding{bindings}}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Notes, Action: "notes"},
		{Key: m.Keys.Trash, Action: "trash"},
		{Key: m.Keys.Reminders, Action: "reminders"},
		{Key: "/", Action: "command"},
		{Key: "a", Action: "acknowledge"},
		{Key: m.Keys.Help, Action: "help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewNotes:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "n", Action: "new note"},
			{Key: "e", Action: "edit note"},
			{Key: "p", Action: "toggle pin"},
			{Key: "d", Action: "move to trash"},
			{Key: "s", Action: "cycle sort order"},
			{Key: "pgup/pgdown", Action: "scroll preview"},
		}
	case ViewTrash:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "r", Action: "restore note"},
			{Key: "D", Action: "delete permanently"},
			{Key: "x", Action: "clean up expired notes"},
		}
	case ViewReminders:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter", Action: "open note"},
			{Key: "d", Action: "delete reminder"},
			{Key: "a", Action: "acknowledge selected"},
		}
	default:
		return nil
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
