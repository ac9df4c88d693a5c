package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/model"
)

func (e *Engine) CreateCategory(ctx context.Context, name string, color *string) (int64, error) {
	const op = "create category"
	name, normalized, err := normalizeCategory(op, name, color)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `INSERT INTO categories (name, color) VALUES (?, ?)`, name, nullableString(normalized))
	if err != nil {
		return 0, classify(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

func (e *Engine) GetCategory(ctx context.Context, id int64) (Category, error) {
	const op = "get category"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return Category{}, err
	}
	item, err := scanCategory(db.QueryRowContext(ctx, `SELECT id, name, color FROM categories WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, apperr.NotFound(op, "category %d not found", id)
		}
		return Category{}, classify(op, err)
	}
	return item, nil
}

func (e *Engine) UpdateCategory(ctx context.Context, id int64, name string, color *string) error {
	const op = "update category"
	name, normalized, err := normalizeCategory(op, name, color)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE categories SET name = ?, color = ? WHERE id = ?`, name, nullableString(normalized), id)
	if err != nil {
		return classify(op, err)
	}
	return checkRowsAffected(res, op, id)
}

// DeleteCategory detaches every note from the category and removes it in
// one transaction. The notes themselves are kept.
func (e *Engine) DeleteCategory(ctx context.Context, id int64) error {
	const op = "delete category"
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.withTx(ctx, op, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, categoryExistsQuery, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(op, "category %d not found", id)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE notes SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		return err
	})
}

func (e *Engine) ListCategories(ctx context.Context) ([]Category, error) {
	const op = "list categories"
	e.mu.Lock()
	defer e.mu.Unlock()
	db, err := e.conn(op)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		item, scanErr := scanCategory(rows)
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

func normalizeCategory(op, name string, color *string) (string, *string, error) {
	name, err := model.NormalizeCategoryName(name)
	if err != nil {
		return "", nil, apperr.New(apperr.KindValidation, op, err)
	}
	normalized, err := model.NormalizeColor(color)
	if err != nil {
		return "", nil, apperr.New(apperr.KindValidation, op, err)
	}
	return name, normalized, nil
}
