package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

// MoveToTrash stamps deleted_at = now on every listed note that exists,
// including notes already in the trash, whose retention restarts. Unknown ids
// are skipped. It returns how many notes were stamped.
func (e *Engine) MoveToTrash(ctx context.Context, ids []int64) (int, error) {
	const op = "move to trash"
	if len(ids) == 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.unixNow()
	var moved int
	err := e.withTx(ctx, op, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `UPDATE notes SET deleted_at = ? WHERE id = ?`, now, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			moved += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// RestoreFromTrash clears deleted_at on every listed note in the trash.
// Unknown ids are skipped.
func (e *Engine) RestoreFromTrash(ctx context.Context, ids []int64) (int, error) {
	const op = "restore from trash"
	if len(ids) == 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var restored int
	err := e.withTx(ctx, op, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `UPDATE notes SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			restored += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restored, nil
}

// ListTrash returns trashed notes, most recently deleted first.
func (e *Engine) ListTrash(ctx context.Context) ([]Note, error) {
	const op = "list trash"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id DESC`)
	if err != nil {
		return nil, classify(op, err)
	}
	notes, err := scanNotes(rows)
	if err != nil {
		return nil, classify(op, err)
	}
	return notes, nil
}

// PermanentlyDelete erases the listed notes and their reminders in one
// transaction. Any failure rolls back the whole batch.
func (e *Engine) PermanentlyDelete(ctx context.Context, ids []int64) (int, error) {
	const op = "permanently delete"
	if len(ids) == 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var deleted int
	err := e.withTx(ctx, op, func(tx *sql.Tx) error {
		n, err := deleteNotes(ctx, tx, ids)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// CleanupTrash erases notes that have been in the trash longer than
// retentionDays, together with their reminders. The batch is all or nothing.
func (e *Engine) CleanupTrash(ctx context.Context, retentionDays int) (int, error) {
	const op = "cleanup trash"
	if retentionDays < 0 {
		return 0, apperr.Validation(op, "retention must not be negative, got %d days", retentionDays)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	threshold := retentionThreshold(e.unixNow(), retentionDays)
	var deleted int
	err := e.withTx(ctx, op, func(tx *sql.Tx) error {
		ids, err := expiredTrash(ctx, tx, threshold)
		if err != nil {
			return err
		}
		n, err := deleteNotes(ctx, tx, ids)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		e.logger.Info("trash cleaned up", "deleted", deleted, "retention_days", retentionDays)
	}
	return deleted, nil
}

// retentionThreshold is now - days*86400, clamped to math.MinInt64 when the
// retention reaches past the epoch so huge values keep everything.
func retentionThreshold(now int64, retentionDays int) int64 {
	days := int64(retentionDays)
	if now < 0 || days > now/secondsPerDay {
		return math.MinInt64
	}
	return now - days*secondsPerDay
}

func expiredTrash(ctx context.Context, tx *sql.Tx, threshold int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM notes WHERE deleted_at IS NOT NULL AND deleted_at < ?`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// deleteNotes removes reminders before their note so the foreign key never
// sees a dangling reminder.
func deleteNotes(ctx context.Context, tx *sql.Tx, ids []int64) (int, error) {
	var deleted int
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE note_id = ?`, id); err != nil {
			return 0, fmt.Errorf("delete reminders of note %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("delete note %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		deleted += int(n)
	}
	return deleted, nil
}
