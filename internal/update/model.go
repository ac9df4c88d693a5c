package update

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/stickynotes/internal/model"
	"github.com/sandeepkv93/stickynotes/internal/scheduler"
	"github.com/sandeepkv93/stickynotes/internal/storage"
)

type View string

const (
	ViewNotes     View = "Notes"
	ViewTrash     View = "Trash"
	ViewReminders View = "Reminders"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Notes     string
	Trash     string
	Reminders string
	Help      string
	Quit      string
}

type PaletteState struct {
	Active bool
	Input  string
}

// EditorState tracks the note being edited. NoteID is zero for a new note.
type EditorState struct {
	Active bool
	NoteID int64
}

type Model struct {
	CurrentView View
	Notes       []storage.Note
	Trash       []storage.Note
	Reminders   []storage.Reminder
	Categories  []storage.Category
	Cursor      map[View]int

	Sort       model.NoteSort
	Search     string
	CategoryID *int64

	// Pending holds due reminders delivered by the scheduler and not yet
	// acknowledged, in arrival order.
	Pending []scheduler.Notification

	Palette     PaletteState
	Editor      EditorState
	Status      StatusBar
	LastError   error
	HelpVisible bool
	Quitting    bool
	Keys        GlobalKeyMap

	ctx           context.Context
	store         storage.Repository
	notifications <-chan scheduler.Notification
	cfg           RuntimeConfig

	noteList      list.Model
	reminderTable table.Model
	commandInput  textinput.Model
	editor        textarea.Model
	preview       viewport.Model
	previewKey    string
	helpModel     help.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// ReloadMsg re-reads notes, trash, reminders and categories from the store.
type ReloadMsg struct{}

type ReminderDueMsg struct {
	Notification scheduler.Notification
}

// NewModel builds the TUI state over an opened store. notifications may be
// nil when no scheduler is running.
func NewModel(ctx context.Context, store storage.Repository, notifications <-chan scheduler.Notification, cfg RuntimeConfig) Model {
	cfg = cfg.withDefaults()
	m := Model{
		CurrentView:   ViewNotes,
		Cursor:        map[View]int{},
		Sort:          cfg.Sort,
		ctx:           ctx,
		store:         store,
		notifications: notifications,
		cfg:           cfg,
		Keys: GlobalKeyMap{
			Notes:     "1",
			Trash:     "2",
			Reminders: "3",
			Help:      "?",
			Quit:      "q",
		},
	}
	m.initBubbleComponents()
	m.reload()
	m.syncBubbleData()
	return m
}
