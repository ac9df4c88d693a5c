package storage

import "database/sql"

type scanner interface {
	Scan(dest ...any) error
}

const noteColumns = `id, content, screenshot_path, created_at, COALESCE(updated_at, created_at), is_pinned, color, category_id, deleted_at`

const reminderColumns = `id, note_id, remind_at, triggered, created_at`

func scanNote(s scanner) (Note, error) {
	var out Note
	var screenshot, color sql.NullString
	var category, deleted sql.NullInt64
	if err := s.Scan(&out.ID, &out.Content, &screenshot, &out.CreatedAt, &out.UpdatedAt, &out.IsPinned, &color, &category, &deleted); err != nil {
		return Note{}, err
	}
	out.ScreenshotPath = nullString(screenshot)
	out.Color = nullString(color)
	out.CategoryID = nullInt(category)
	out.DeletedAt = nullInt(deleted)
	return out, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	defer rows.Close()
	out := make([]Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, note)
	}
	return out, rows.Err()
}

func scanCategory(s scanner) (Category, error) {
	var out Category
	var color sql.NullString
	if err := s.Scan(&out.ID, &out.Name, &color); err != nil {
		return Category{}, err
	}
	out.Color = nullString(color)
	return out, nil
}

func scanReminder(s scanner) (Reminder, error) {
	var out Reminder
	if err := s.Scan(&out.ID, &out.NoteID, &out.RemindAt, &out.Triggered, &out.CreatedAt); err != nil {
		return Reminder{}, err
	}
	return out, nil
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	defer rows.Close()
	out := make([]Reminder, 0)
	for rows.Next() {
		item, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanDueReminder(s scanner) (DueReminder, error) {
	var out DueReminder
	r := &out.Reminder
	n := &out.Note
	var screenshot, color sql.NullString
	var category, deleted sql.NullInt64
	if err := s.Scan(
		&r.ID, &r.NoteID, &r.RemindAt, &r.Triggered, &r.CreatedAt,
		&n.ID, &n.Content, &screenshot, &n.CreatedAt, &n.UpdatedAt, &n.IsPinned, &color, &category, &deleted,
	); err != nil {
		return DueReminder{}, err
	}
	n.ScreenshotPath = nullString(screenshot)
	n.Color = nullString(color)
	n.CategoryID = nullInt(category)
	n.DeletedAt = nullInt(deleted)
	return out, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
