package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/model"
)

func (e *Engine) CreateNote(ctx context.Context, content string, screenshotPath *string) (int64, error) {
	const op = "create note"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return 0, err
	}

	now := e.unixNow()
	res, err := db.ExecContext(ctx, `
		INSERT INTO notes (content, screenshot_path, created_at, updated_at, is_pinned, deleted_at)
		VALUES (?, ?, ?, ?, 0, NULL)`,
		content, nullableString(model.NormalizeOptional(screenshotPath)), now, now,
	)
	if err != nil {
		return 0, classify(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

// GetNote returns the note whether or not it is in the trash.
func (e *Engine) GetNote(ctx context.Context, id int64) (Note, error) {
	const op = "get note"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return Note{}, err
	}

	note, err := scanNote(db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, apperr.NotFound(op, "note %d not found", id)
		}
		return Note{}, classify(op, err)
	}
	return note, nil
}

// UpdateNote replaces content, screenshot, pin, color and category. The
// creation time and trash marker are left as they are.
func (e *Engine) UpdateNote(ctx context.Context, in NoteUpdate) error {
	const op = "update note"
	color, err := model.NormalizeColor(in.Color)
	if err != nil {
		return apperr.New(apperr.KindValidation, op, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	if err := requireNote(ctx, db, op, in.ID); err != nil {
		return err
	}
	if err := requireCategory(ctx, db, op, in.CategoryID); err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE notes
		SET content = ?, screenshot_path = ?, is_pinned = ?, color = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		in.Content, nullableString(model.NormalizeOptional(in.ScreenshotPath)), in.IsPinned,
		nullableString(color), nullableInt(in.CategoryID), e.unixNow(), in.ID,
	)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, in.ID)
}

func (e *Engine) SetNoteColor(ctx context.Context, id int64, color *string) error {
	const op = "set note color"
	normalized, err := model.NormalizeColor(color)
	if err != nil {
		return apperr.New(apperr.KindValidation, op, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE notes SET color = ?, updated_at = ? WHERE id = ?`,
		nullableString(normalized), e.unixNow(), id)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, id)
}

// SetNoteCategory assigns a category, or clears it when categoryID is nil.
func (e *Engine) SetNoteCategory(ctx context.Context, id int64, categoryID *int64) error {
	const op = "set note category"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	if err := requireNote(ctx, db, op, id); err != nil {
		return err
	}
	if err := requireCategory(ctx, db, op, categoryID); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE notes SET category_id = ?, updated_at = ? WHERE id = ?`,
		nullableInt(categoryID), e.unixNow(), id)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, id)
}

// ListNotes returns active notes, pinned first, then in the requested order.
func (e *Engine) ListNotes(ctx context.Context, q NoteQuery) ([]Note, error) {
	const op = "list notes"
	sort := q.Sort
	if sort == "" {
		sort = model.DefaultNoteSort
	}
	if !sort.IsValid() {
		return nil, apperr.Validation(op, "unknown sort %q", sort)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, apperr.Validation(op, "limit and offset must not be negative")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE deleted_at IS NULL`
	args := make([]any, 0, 4)
	if q.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *q.CategoryID)
	}
	if q.Search != "" {
		query += ` AND instr(content, ?) > 0`
		args = append(args, q.Search)
	}
	query += orderClause(sort)
	query += applyPagination(&args, q.Limit, q.Offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, classify(op, err)
	}
	return notes, nil
}

func orderClause(sort model.NoteSort) string {
	col := "created_at"
	if sort.Column() == "updated_at" {
		col = "COALESCE(updated_at, created_at)"
	}
	dir := "ASC"
	if sort.Descending() {
		dir = "DESC"
	}
	return fmt.Sprintf(` ORDER BY is_pinned DESC, %s %s, id %s`, col, dir, dir)
}

// TogglePin flips the pinned flag and returns the new value.
func (e *Engine) TogglePin(ctx context.Context, id int64) (bool, error) {
	const op = "toggle pin"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return false, err
	}

	var pinned bool
	if err := db.QueryRowContext(ctx, `SELECT is_pinned FROM notes WHERE id = ?`, id).Scan(&pinned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, apperr.NotFound(op, "note %d not found", id)
		}
		return false, classify(op, err)
	}
	next := !pinned
	res, err := db.ExecContext(ctx, `UPDATE notes SET is_pinned = ?, updated_at = ? WHERE id = ?`, next, e.unixNow(), id)
	if err != nil {
		return false, classify(op, err)
	}
	if err := checkRowsAffected(res, op, id); err != nil {
		return false, err
	}
	return next, nil
}

func requireNote(ctx context.Context, q execQuerier, op string, id int64) error {
	ok, err := exists(ctx, q, noteExistsQuery, id)
	if err != nil {
		return classify(op, err)
	}
	if !ok {
		return apperr.NotFound(op, "note %d not found", id)
	}
	return nil
}

// requireCategory rejects references to categories that do not exist. A nil
// id clears the reference and is always accepted.
func requireCategory(ctx context.Context, q execQuerier, op string, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := exists(ctx, q, categoryExistsQuery, *id)
	if err != nil {
		return classify(op, err)
	}
	if !ok {
		return apperr.Validation(op, "category %d does not exist", *id)
	}
	return nil
}
