package storage

import "github.com/sandeepkv93/stickynotes/internal/model"

// Timestamps are unix seconds.
type Note struct {
	ID             int64   `json:"id"`
	Content        string  `json:"content"`
	ScreenshotPath *string `json:"screenshot_path,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
	IsPinned       bool    `json:"is_pinned"`
	Color          *string `json:"color,omitempty"`
	CategoryID     *int64  `json:"category_id,omitempty"`
	DeletedAt      *int64  `json:"deleted_at,omitempty"`
}

func (n Note) InTrash() bool { return n.DeletedAt != nil }

type Category struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

type Reminder struct {
	ID        int64 `json:"id"`
	NoteID    int64 `json:"note_id"`
	RemindAt  int64 `json:"remind_at"`
	Triggered bool  `json:"triggered"`
	CreatedAt int64 `json:"created_at"`
}

// DueReminder pairs an untriggered reminder with its active note.
type DueReminder struct {
	Reminder Reminder `json:"reminder"`
	Note     Note     `json:"note"`
}

// NoteUpdate replaces the mutable fields of a note.
type NoteUpdate struct {
	ID             int64
	Content        string
	ScreenshotPath *string
	IsPinned       bool
	Color          *string
	CategoryID     *int64
}

type NoteQuery struct {
	CategoryID *int64
	// Search is matched as a case-sensitive literal substring of content.
	Search string
	Sort   model.NoteSort
	Limit  int
	Offset int
}

type DueQuery struct {
	// Until bounds remind_at (inclusive). Zero returns every pending reminder.
	Until int64
	Limit int
}
