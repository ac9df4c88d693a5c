package storage

import "context"

// Repository is the operation surface of the encrypted store.
type Repository interface {
	CreateNote(ctx context.Context, content string, screenshotPath *string) (int64, error)
	GetNote(ctx context.Context, id int64) (Note, error)
	UpdateNote(ctx context.Context, in NoteUpdate) error
	SetNoteColor(ctx context.Context, id int64, color *string) error
	SetNoteCategory(ctx context.Context, id int64, categoryID *int64) error
	ListNotes(ctx context.Context, q NoteQuery) ([]Note, error)
	TogglePin(ctx context.Context, id int64) (bool, error)

	MoveToTrash(ctx context.Context, ids []int64) (int, error)
	RestoreFromTrash(ctx context.Context, ids []int64) (int, error)
	ListTrash(ctx context.Context) ([]Note, error)
	PermanentlyDelete(ctx context.Context, ids []int64) (int, error)
	CleanupTrash(ctx context.Context, retentionDays int) (int, error)

	CreateCategory(ctx context.Context, name string, color *string) (int64, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	UpdateCategory(ctx context.Context, id int64, name string, color *string) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)

	CreateReminder(ctx context.Context, noteID, remindAt int64) (int64, error)
	GetReminder(ctx context.Context, id int64) (Reminder, error)
	UpdateReminder(ctx context.Context, id, remindAt int64) error
	DeleteReminder(ctx context.Context, id int64) error
	ListReminders(ctx context.Context, noteID int64) ([]Reminder, error)
	ListAllReminders(ctx context.Context) ([]Reminder, error)
	MarkTriggered(ctx context.Context, id int64) error
	ListDueReminders(ctx context.Context, q DueQuery) ([]DueReminder, error)
}

var _ Repository = (*Engine)(nil)
