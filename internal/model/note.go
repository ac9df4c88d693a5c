package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSort  = errors.New("model: invalid note sort")
	ErrInvalidColor = errors.New("model: invalid color tag")
)

const maxColorLen = 32

type NoteSort string

const (
	SortCreatedAsc  NoteSort = "created_asc"
	SortCreatedDesc NoteSort = "created_desc"
	SortUpdatedAsc  NoteSort = "updated_asc"
	SortUpdatedDesc NoteSort = "updated_desc"
)

// DefaultNoteSort matches the listing order of the desktop app: newest first.
const DefaultNoteSort = SortCreatedDesc

func (s NoteSort) IsValid() bool {
	switch s {
	case SortCreatedAsc, SortCreatedDesc, SortUpdatedAsc, SortUpdatedDesc:
		return true
	default:
		return false
	}
}

// Column is the notes column the sort applies to.
func (s NoteSort) Column() string {
	if s == SortUpdatedAsc || s == SortUpdatedDesc {
		return "updated_at"
	}
	return "created_at"
}

func (s NoteSort) Descending() bool {
	return s == SortCreatedDesc || s == SortUpdatedDesc
}

// ParseNoteSort accepts the canonical names plus dash separated aliases
// ("created-desc"). An empty value selects DefaultNoteSort.
func ParseNoteSort(raw string) (NoteSort, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return DefaultNoteSort, nil
	}
	v = strings.ReplaceAll(v, "-", "_")
	s := NoteSort(v)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}
	return s, nil
}

// NormalizeColor trims a color tag. Blank tags clear the color.
func NormalizeColor(color *string) (*string, error) {
	if color == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*color)
	if v == "" {
		return nil, nil
	}
	if len(v) > maxColorLen {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrInvalidColor, maxColorLen)
	}
	for _, r := range v {
		if !isColorRune(r) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColor, v)
		}
	}
	return &v, nil
}

// NormalizeOptional trims an optional text value; blank becomes nil.
func NormalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isColorRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '#' || r == '-' || r == '_':
		return true
	default:
		return false
	}
}
