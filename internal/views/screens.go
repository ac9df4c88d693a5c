package views

import (
	"fmt"
	"strings"
)

type NoteRowData struct {
	ID       int64
	Title    string
	Pinned   bool
	Color    string
	Category string
	Age      string
}

type NotesPanelData struct {
	Heading  string
	Filter   string
	ListView string
	Rows     []NoteRowData
	Cursor   int
}

type ReminderRowData struct {
	ID        int64
	NoteID    int64
	NoteTitle string
	At        string
	Relative  string
	Triggered bool
}

type RemindersPanelData struct {
	TableView string
	Rows      []ReminderRowData
	Cursor    int
}

type NoteDetailData struct {
	ID          int64
	Category    string
	Color       string
	Pinned      bool
	Created     string
	Updated     string
	Deleted     string
	Reminders   int
	PreviewView string
}

type EditorData struct {
	Active     bool
	NoteID     int64
	EditorView string
}

type PendingReminderData struct {
	ReminderID int64
	NoteID     int64
	Title      string
	Due        string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderNotesPanel(data NotesPanelData) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(data.Heading) + ":\n")
	if data.Filter != "" {
		b.WriteString(mutedStyle.Render("filter: "+data.Filter) + "\n")
	}
	if data.ListView != "" {
		b.WriteString(data.ListView + "\n")
		return strings.TrimSpace(b.String())
	}
	if len(data.Rows) == 0 {
		b.WriteString("(empty)")
		return b.String()
	}
	for i, row := range data.Rows {
		b.WriteString(renderNoteRow(row, i == data.Cursor) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderNoteRow(row NoteRowData, selected bool) string {
	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
	}
	parts := []string{fmt.Sprintf("#%d", row.ID)}
	if row.Pinned {
		parts = append(parts, pinStyle.Render("[pin]"))
	}
	if sw := ColorSwatch(row.Color); sw != "" {
		parts = append(parts, sw)
	}
	parts = append(parts, row.Title)
	if row.Category != "" {
		parts = append(parts, mutedStyle.Render("("+row.Category+")"))
	}
	if row.Age != "" {
		parts = append(parts, mutedStyle.Render(row.Age))
	}
	return prefix + strings.Join(parts, " ")
}

func RenderRemindersPanel(data RemindersPanelData) string {
	var b strings.Builder
	b.WriteString("reminders:\n")
	if data.TableView != "" {
		b.WriteString(data.TableView)
		return b.String()
	}
	if len(data.Rows) == 0 {
		b.WriteString("(none scheduled)")
		return b.String()
	}
	for i, row := range data.Rows {
		prefix := "  "
		if i == data.Cursor {
			prefix = cursorStyle.Render("> ")
		}
		state := "pending"
		if row.Triggered {
			state = "done"
		}
		b.WriteString(fmt.Sprintf("%s#%d note %d %s (%s) %s\n", prefix, row.ID, row.NoteID, row.At, row.Relative, state))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderNoteDetail(data NoteDetailData) string {
	if data.ID == 0 {
		return "note:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("note #%d", data.ID))
	if data.Pinned {
		b.WriteString(" " + pinStyle.Render("[pinned]"))
	}
	b.WriteString("\n")
	if data.Category != "" {
		b.WriteString("category: " + data.Category + "\n")
	}
	if data.Color != "" {
		b.WriteString("color: " + ColorSwatch(data.Color) + " " + data.Color + "\n")
	}
	b.WriteString("created: " + data.Created + "\n")
	b.WriteString("updated: " + data.Updated + "\n")
	if data.Deleted != "" {
		b.WriteString("trashed: " + data.Deleted + "\n")
	}
	if data.Reminders > 0 {
		b.WriteString(fmt.Sprintf("reminders: %d pending\n", data.Reminders))
	}
	b.WriteString("\n" + data.PreviewView)
	return strings.TrimSpace(b.String())
}

func RenderEditor(data EditorData) string {
	if !data.Active {
		return ""
	}
	heading := "new note"
	if data.NoteID > 0 {
		heading = fmt.Sprintf("editing note #%d", data.NoteID)
	}
	return fmt.Sprintf("%s (ctrl+s save, esc cancel):\n%s", heading, data.EditorView)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\ncommand: /%s", input)
}

func RenderPendingReminders(items []PendingReminderData) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("due reminders (%d) - press a to acknowledge:\n", len(items)))
	for _, it := range items {
		b.WriteString(fmt.Sprintf("- #%d note %d: %s (%s)\n", it.ReminderID, it.NoteID, it.Title, it.Due))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("\nhelp (%s):\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
