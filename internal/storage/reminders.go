package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/model"
)

func (e *Engine) CreateReminder(ctx context.Context, noteID, remindAt int64) (int64, error) {
	const op = "create reminder"
	if err := model.ValidateRemindAt(remindAt); err != nil {
		return 0, apperr.New(apperr.KindValidation, op, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return 0, err
	}
	if err := requireNote(ctx, db, op, noteID); err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO reminders (note_id, remind_at, triggered, created_at)
		VALUES (?, ?, 0, ?)`, noteID, remindAt, e.unixNow())
	if err != nil {
		return 0, classify(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

func (e *Engine) GetReminder(ctx context.Context, id int64) (Reminder, error) {
	const op = "get reminder"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return Reminder{}, err
	}
	item, err := scanReminder(db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reminder{}, apperr.NotFound(op, "reminder %d not found", id)
		}
		return Reminder{}, classify(op, err)
	}
	return item, nil
}

// UpdateReminder reschedules a reminder. The triggered flag is not reset.
func (e *Engine) UpdateReminder(ctx context.Context, id, remindAt int64) error {
	const op = "update reminder"
	if err := model.ValidateRemindAt(remindAt); err != nil {
		return apperr.New(apperr.KindValidation, op, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE reminders SET remind_at = ? WHERE id = ?`, remindAt, id)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, id)
}

func (e *Engine) DeleteReminder(ctx context.Context, id int64) error {
	const op = "delete reminder"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, id)
}

func (e *Engine) ListReminders(ctx context.Context, noteID int64) ([]Reminder, error) {
	return e.listReminders(ctx, "list reminders",
		`SELECT `+reminderColumns+` FROM reminders WHERE note_id = ? ORDER BY remind_at ASC, id ASC`, noteID)
}

func (e *Engine) ListAllReminders(ctx context.Context) ([]Reminder, error) {
	return e.listReminders(ctx, "list all reminders",
		`SELECT `+reminderColumns+` FROM reminders ORDER BY remind_at ASC, id ASC`)
}

func (e *Engine) listReminders(ctx context.Context, op, query string, args ...any) ([]Reminder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	items, err := scanReminders(rows)
	if err != nil {
		return nil, classify(op, err)
	}
	return items, nil
}

// MarkTriggered acknowledges a reminder. Marking it again is a no-op.
func (e *Engine) MarkTriggered(ctx context.Context, id int64) error {
	const op = "mark triggered"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE reminders SET triggered = 1 WHERE id = ?`, id)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, id)
}

// ListDueReminders returns untriggered reminders whose note is not in the
// trash, joined with that note, earliest first.
func (e *Engine) ListDueReminders(ctx context.Context, q DueQuery) ([]DueReminder, error) {
	const op = "list due reminders"
	if q.Limit < 0 {
		return nil, apperr.Validation(op, "limit must not be negative")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.note_id, r.remind_at, r.triggered, r.created_at,
			n.id, n.content, n.screenshot_path, n.created_at, COALESCE(n.updated_at, n.created_at),
			n.is_pinned, n.color, n.category_id, n.deleted_at
		FROM reminders r
		JOIN notes n ON n.id = r.note_id
		WHERE r.triggered = 0 AND n.deleted_at IS NULL`
	args := make([]any, 0, 2)
	if q.Until > 0 {
		query += ` AND r.remind_at <= ?`
		args = append(args, q.Until)
	}
	query += ` ORDER BY r.remind_at ASC, r.id ASC`
	query += applyPagination(&args, q.Limit, 0)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]DueReminder, 0)
	for rows.Next() {
		item, scanErr := scanDueReminder(rows)
		if scanErr != nil {
			return nil, classify(op, scanErr)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}
