// Package apperr classifies the failures that cross the storage and key
// management boundaries so callers can react to the kind instead of parsing
// messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown            Kind = "Unknown"
	KindNotFound           Kind = "NotFound"
	KindValidation         Kind = "ValidationError"
	KindIO                 Kind = "IOError"
	KindQuery              Kind = "QueryError"
	KindEncryptionKey      Kind = "EncryptionKeyError"
	KindIntegrityViolation Kind = "IntegrityViolation"
	KindSecretStore        Kind = "SecretStoreError"
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind so errors.Is(err, apperr.ErrNotFound)
// works for any wrapped NotFound.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrIO                 = &Error{Kind: KindIO}
	ErrQuery              = &Error{Kind: KindQuery}
	ErrEncryptionKey      = &Error{Kind: KindEncryptionKey}
	ErrIntegrityViolation = &Error{Kind: KindIntegrityViolation}
	ErrSecretStore        = &Error{Kind: KindSecretStore}
)

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func NotFound(op, format string, args ...any) *Error {
	return Newf(KindNotFound, op, format, args...)
}

func Validation(op, format string, args ...any) *Error {
	return Newf(KindValidation, op, format, args...)
}

// KindOf returns the kind of the outermost *Error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
