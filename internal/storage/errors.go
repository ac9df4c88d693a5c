package storage

import (
	"context"
	"database/sql"
	"errors"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

var (
	ErrNotFound       = apperr.ErrNotFound
	ErrNotInitialized = errors.New("storage: engine not initialized")
)

// classify maps driver failures onto the error taxonomy. Errors that are
// already classified pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, op, err)
	}
	if errors.Is(err, ErrNotInitialized) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.KindIO, op, err)
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrNotADB:
			return apperr.New(apperr.KindEncryptionKey, op, err)
		case sqlite3.ErrConstraint:
			return apperr.New(apperr.KindIntegrityViolation, op, err)
		case sqlite3.ErrIoErr, sqlite3.ErrCantOpen, sqlite3.ErrFull, sqlite3.ErrReadonly, sqlite3.ErrPerm:
			return apperr.New(apperr.KindIO, op, err)
		}
	}
	return apperr.New(apperr.KindQuery, op, err)
}

func checkRowsAffected(res sql.Result, op string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if affected == 0 {
		return apperr.NotFound(op, "id %d not found", id)
	}
	return nil
}
