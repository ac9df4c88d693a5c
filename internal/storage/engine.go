// Package storage is the encrypted notes store. A single Engine owns the one
// database connection and serializes every operation behind its mutex.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

const (
	DriverName    = "sqlite3"
	secondsPerDay = 86400
)

type Engine struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now for timestamps and retention thresholds.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an engine without a connection; call Init before use.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open is New followed by Init.
func Open(ctx context.Context, path string, key []byte, opts ...Option) (*Engine, error) {
	e := New(opts...)
	if err := e.Init(ctx, path, key); err != nil {
		return nil, err
	}
	return e, nil
}

// Init opens (or creates) the database at path, keyed with key, and ensures
// the schema. A connection that is already open is closed and replaced.
func (e *Engine) Init(ctx context.Context, path string, key []byte) error {
	const op = "init storage"
	if path == "" {
		return apperr.Validation(op, "database path is required")
	}
	if len(key) == 0 {
		return apperr.New(apperr.KindEncryptionKey, op, errors.New("empty encryption key"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.logger.Warn("close previous connection", "path", e.path, "err", err)
		}
		e.db = nil
		e.path = ""
	}

	db, err := openEncrypted(ctx, path, key)
	if err != nil {
		return err
	}
	e.db = db
	e.path = path
	e.logger.Debug("storage initialized", "path", path)
	return nil
}

func openEncrypted(ctx context.Context, path string, key []byte) (*sql.DB, error) {
	const op = "open database"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, apperr.New(apperr.KindIO, op, fmt.Errorf("create data dir: %w", err))
	}

	db, err := sql.Open(DriverName, dsn(path, key))
	if err != nil {
		return nil, classify(op, err)
	}
	// The key pragma is per connection, so the pool never grows past one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	fail := func(err error) (*sql.DB, error) {
		_ = db.Close()
		return nil, err
	}

	var tables int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master`).Scan(&tables); err != nil {
		err = classify(op, err)
		if apperr.Is(err, apperr.KindEncryptionKey) {
			return fail(apperr.New(apperr.KindEncryptionKey, op, fmt.Errorf("key does not decrypt %s: %w", path, errors.Unwrap(err))))
		}
		return fail(err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fail(classify("enable foreign keys", err))
	}
	if err := MigrateUp(ctx, db); err != nil {
		return fail(classify("migrate schema", err))
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fail(apperr.New(apperr.KindIO, op, err))
	}
	return db, nil
}

// dsn applies the key as a connection pragma so it runs before any other
// statement on the connection.
func dsn(path string, key []byte) string {
	params := url.Values{}
	params.Set("_pragma_key", string(key))
	params.Set("_foreign_keys", "1")
	params.Set("_busy_timeout", "5000")
	return path + "?" + params.Encode()
}

// IsEncrypted reports whether the file at path is an encrypted database.
func IsEncrypted(path string) (bool, error) {
	ok, err := sqlite3.IsEncrypted(path)
	if err != nil {
		return false, classify("inspect database", err)
	}
	return ok, nil
}

func (e *Engine) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return classify("close database", err)
}

// conn returns the open connection. Callers must hold e.mu.
func (e *Engine) conn(op string) (*sql.DB, error) {
	if e.db == nil {
		return nil, classify(op, ErrNotInitialized)
	}
	return e.db, nil
}

func (e *Engine) unixNow() int64 { return e.now().Unix() }

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside one transaction. Any error from fn rolls the
// transaction back before it is returned. Callers must hold e.mu.
func (e *Engine) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	db, err := e.conn(op)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			e.logger.Error("rollback failed", "op", op, "err", rbErr)
		}
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

func exists(ctx context.Context, q execQuerier, query string, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const (
	noteExistsQuery     = `SELECT 1 FROM notes WHERE id = ?`
	categoryExistsQuery = `SELECT 1 FROM categories WHERE id = ?`
)

func applyPagination(args *[]any, limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		*args = append(*args, limit, offset)
		return ` LIMIT ? OFFSET ?`
	case limit > 0:
		*args = append(*args, limit)
		return ` LIMIT ?`
	case offset > 0:
		*args = append(*args, offset)
		return ` LIMIT -1 OFFSET ?`
	default:
		return ""
	}
}
