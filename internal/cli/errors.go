package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
)

const (
	ExitCodeSuccess     = 0
	ExitCodeGeneric     = 1
	ExitCodeUsage       = 2
	ExitCodeNotFound    = 3
	ExitCodeIO          = 4
	ExitCodeKey         = 5
	ExitCodeSecretStore = 6
)

type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ExitError) ExitCode() int {
	if e == nil {
		return ExitCodeGeneric
	}
	return e.Code
}

// mapCommandError attaches an exit code derived from the error kind.
func mapCommandError(err error) error {
	if err == nil {
		return nil
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return err
	}
	code := ExitCodeGeneric
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		code = ExitCodeUsage
	case apperr.KindNotFound:
		code = ExitCodeNotFound
	case apperr.KindIO:
		code = ExitCodeIO
	case apperr.KindEncryptionKey:
		code = ExitCodeKey
	case apperr.KindSecretStore:
		code = ExitCodeSecretStore
	}
	return &ExitError{Code: code, Err: err}
}

func usageErrorf(format string, args ...any) error {
	return &ExitError{
		Code: ExitCodeUsage,
		Err:  apperr.Validation("usage", format, args...),
	}
}

// FormatError renders err as "<kind>: <message>". Errors without a kind are
// reported as plain errors.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return fmt.Sprintf("error: %v", err)
}

func noArgs(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 {
			return usageErrorf("%s does not accept positional arguments", name)
		}
		return nil
	}
}

func exactArgs(name string, n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s requires %s", name, what)
		}
		return nil
	}
}

func minArgs(name string, n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageErrorf("%s requires %s", name, what)
		}
		return nil
	}
}

func parseID(what, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

// parseIDs accepts ids as separate arguments or comma separated.
func parseIDs(what string, args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			if strings.TrimSpace(field) == "" {
				continue
			}
			id, err := parseID(what, field)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, usageErrorf("expected at least one %s id", what)
	}
	return ids, nil
}
