package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrInvalidCategoryName = errors.New("model: invalid category name")

const maxCategoryNameLen = 64

// NormalizeCategoryName returns the trimmed name or an error when it is blank
// or too long.
func NormalizeCategoryName(name string) (string, error) {
	v := strings.TrimSpace(name)
	if v == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidCategoryName)
	}
	if utf8.RuneCountInString(v) > maxCategoryNameLen {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidCategoryName, maxCategoryNameLen)
	}
	return v, nil
}
