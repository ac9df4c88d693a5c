// Package commands parses the TUI command palette ("/new buy milk",
// "/remind selected +30m") and dispatches parsed commands to handlers.
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/stickynotes/internal/model"
)

type Type string

const (
	TypeNew     Type = "new"
	TypePin     Type = "pin"
	TypeTrash   Type = "trash"
	TypeRestore Type = "restore"
	TypeSearch  Type = "search"
	TypeSort    Type = "sort"
	TypeShow    Type = "show"
	TypeColor   Type = "color"
	TypeRemind  Type = "remind"
	TypeAck     Type = "ack"
	TypeCleanup Type = "cleanup"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Target is either the current selection or explicit note ids.
type Target struct {
	Selected bool
	IDs      []int64
}

type NewArgs struct {
	Content string
}

type TargetArgs struct {
	Target Target
}

type SearchArgs struct {
	Text string
}

type SortArgs struct {
	Sort model.NoteSort
}

type ShowArgs struct {
	Subject  string
	Category string
}

type ColorArgs struct {
	Target Target
	// Color is nil when the color is cleared.
	Color *string
}

type RemindArgs struct {
	Target Target
	When   string
}

type AckArgs struct {
	All         bool
	ReminderIDs []int64
}

type CleanupArgs struct {
	// Days is -1 when the configured retention applies.
	Days int
}

type Command struct {
	Type    Type
	Raw     string
	New     *NewArgs
	Target  *TargetArgs
	Search  *SearchArgs
	Sort    *SortArgs
	Show    *ShowArgs
	Color   *ColorArgs
	Remind  *RemindArgs
	Ack     *AckArgs
	Cleanup *CleanupArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeNew:
		return parseNew(input, args)
	case TypePin, TypeTrash, TypeRestore:
		return parseTargetOnly(input, Type(head), args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Text: strings.Join(args, " ")}}, nil
	case TypeSort:
		return parseSort(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeColor:
		return parseColor(input, args)
	case TypeRemind:
		return parseRemind(input, args)
	case TypeAck:
		return parseAck(input, args)
	case TypeCleanup:
		return parseCleanup(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseNew(raw string, args []string) (Command, error) {
	content := strings.TrimSpace(strings.Join(args, " "))
	if content == "" {
		return Command{}, invalid("new requires note content")
	}
	return Command{Type: TypeNew, Raw: raw, New: &NewArgs{Content: content}}, nil
}

func parseTargetOnly(raw string, typ Type, args []string) (Command, error) {
	target, err := parseTarget(args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: target}}, nil
}

// parseTarget reads "selected", no argument (also the selection) or a list
// of note ids separated by spaces or commas.
func parseTarget(args []string) (Target, error) {
	if len(args) == 0 || (len(args) == 1 && strings.EqualFold(args[0], "selected")) {
		return Target{Selected: true}, nil
	}
	ids, err := parseIDs(args)
	if err != nil {
		return Target{}, err
	}
	return Target{IDs: ids}, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimPrefix(strings.TrimSpace(field), "#")
			if field == "" {
				continue
			}
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil || id <= 0 {
				return nil, invalid("invalid id %q", field)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, invalid("expected at least one id")
	}
	return ids, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("sort requires one of created_asc, created_desc, updated_asc, updated_desc")
	}
	sort, err := model.ParseNoteSort(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Sort: sort}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("show requires a subject: notes, trash or reminders")
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "notes", "trash", "reminders":
	default:
		return Command{}, invalid("unknown subject %q", subject)
	}
	category := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "cat:") {
			category = strings.TrimSpace(arg[len("cat:"):])
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Category: category}}, nil
}

func parseColor(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("color requires a color or none")
	}
	value := args[len(args)-1]
	target, err := parseTarget(args[:len(args)-1])
	if err != nil {
		return Command{}, err
	}
	var color *string
	if !strings.EqualFold(value, "none") {
		color, err = model.NormalizeColor(&value)
		if err != nil {
			return Command{}, invalid("%v", err)
		}
	}
	return Command{Type: TypeColor, Raw: raw, Color: &ColorArgs{Target: target, Color: color}}, nil
}

// parseRemind accepts "remind [selected|<id>] <when...>". A leading number is
// a note id only when more words follow it.
func parseRemind(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("remind requires a time")
	}
	target := Target{Selected: true}
	rest := args
	if strings.EqualFold(args[0], "selected") {
		rest = args[1:]
	} else if len(args) > 1 {
		if id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64); err == nil && id > 0 {
			target = Target{IDs: []int64{id}}
			rest = args[1:]
		}
	}
	when := strings.TrimSpace(strings.Join(rest, " "))
	if when == "" {
		return Command{}, invalid("remind requires a time")
	}
	return Command{Type: TypeRemind, Raw: raw, Remind: &RemindArgs{Target: target, When: when}}, nil
}

func parseAck(raw string, args []string) (Command, error) {
	if len(args) == 0 || (len(args) == 1 && strings.EqualFold(args[0], "all")) {
		return Command{Type: TypeAck, Raw: raw, Ack: &AckArgs{All: true}}, nil
	}
	ids, err := parseIDs(args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeAck, Raw: raw, Ack: &AckArgs{ReminderIDs: ids}}, nil
}

func parseCleanup(raw string, args []string) (Command, error) {
	days := -1
	if len(args) > 0 {
		v, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[0]), "d"))
		if err != nil || v < 0 {
			return Command{}, invalid("cleanup takes a retention in days, got %q", args[0])
		}
		days = v
	}
	return Command{Type: TypeCleanup, Raw: raw, Cleanup: &CleanupArgs{Days: days}}, nil
}
