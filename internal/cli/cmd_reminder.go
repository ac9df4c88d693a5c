package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/model"
	"github.com/sandeepkv93/stickynotes/internal/storage"
	"github.com/sandeepkv93/stickynotes/internal/views"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

func newReminderCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminder",
		Aliases: []string{"remind"},
		Short:   "Schedule and acknowledge note reminders",
		Example: "  stickynotes reminder add 3 in 2h\n" +
			"  stickynotes reminder add 3 tomorrow 09:00\n" +
			"  stickynotes reminder due\n" +
			"  stickynotes reminder ack 7",
	}
	cmd.AddCommand(
		newReminderAddCommand(deps),
		newReminderListCommand(deps),
		newReminderDueCommand(deps),
		newReminderAckCommand(deps),
		newReminderUpdateCommand(deps),
		newReminderDeleteCommand(deps),
	)
	return cmd
}

func parseWhenArgs(args []string) (time.Time, error) {
	at, err := model.ParseWhen(strings.Join(args, " "), nowFunc())
	if err != nil {
		return time.Time{}, usageErrorf("%v", err)
	}
	return at, nil
}

func newReminderAddCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <note-id> <when...>",
		Short: "Remind about a note at a time (+30m, in 2h, 14:00, tomorrow 09:00, 2026-03-01 10:00)",
		Args:  minArgs("reminder add", 2, "a note id and a time"),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteID, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			at, err := parseWhenArgs(args[1:])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				id, err := rt.store.CreateReminder(ctx, noteID, at.Unix())
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					r, err := rt.store.GetReminder(ctx, id)
					if err != nil {
						return err
					}
					return printJSON(deps.out, r)
				}
				_, err = fmt.Fprintf(deps.out, "created reminder %d for note %d at %s (%s)\n", id, noteID, at.Format(timeLayout), ago(at.Unix()))
				return err
			})
		},
	}
}

func newReminderListCommand(deps commandDeps) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders, all or for one note",
		Args:  noArgs("reminder list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var noteID int64
			if note != "" {
				id, err := parseID("note", note)
				if err != nil {
					return err
				}
				noteID = id
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				var (
					reminders []storage.Reminder
					err       error
				)
				if noteID > 0 {
					reminders, err = rt.store.ListReminders(ctx, noteID)
				} else {
					reminders, err = rt.store.ListAllReminders(ctx)
				}
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, reminders)
				}
				return renderTable(deps.out, []string{"ID", "Note", "Remind at", "When", "State"}, reminderRows(reminders))
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Only reminders of this note id")
	return cmd
}

func newReminderDueCommand(deps commandDeps) *cobra.Command {
	var (
		until string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List untriggered reminders of active notes that are due",
		Args:  noArgs("reminder due"),
		RunE: func(cmd *cobra.Command, args []string) error {
			bound := nowFunc()
			if until != "" {
				at, err := parseWhenArgs([]string{until})
				if err != nil {
					return err
				}
				bound = at
			}
			if limit < 0 {
				return usageErrorf("--limit must not be negative")
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				due, err := rt.store.ListDueReminders(ctx, storage.DueQuery{Until: bound.Unix(), Limit: limit})
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, due)
				}
				rows := make([][]string, 0, len(due))
				for _, d := range due {
					rows = append(rows, []string{
						idString(d.Reminder.ID),
						idString(d.Note.ID),
						views.NoteTitle(d.Note.Content, listTitleRunes),
						stamp(d.Reminder.RemindAt),
						ago(d.Reminder.RemindAt),
					})
				}
				return renderTable(deps.out, []string{"ID", "Note", "Title", "Remind at", "When"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&until, "until", "", "Include reminders due up to this time (default: now)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of reminders (0 = all)")
	return cmd
}

func newReminderAckCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <id>...",
		Short: "Mark reminders as triggered",
		Args:  minArgs("reminder ack", 1, "at least one reminder id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("reminder", args)
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				for _, id := range ids {
					if err := rt.store.MarkTriggered(ctx, id); err != nil {
						return err
					}
				}
				_, err := fmt.Fprintf(deps.out, "acknowledged %d reminder(s)\n", len(ids))
				return err
			})
		},
	}
}

func newReminderUpdateCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <when...>",
		Short: "Move a reminder to a new time",
		Args:  minArgs("reminder update", 2, "a reminder id and a time"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("reminder", args[0])
			if err != nil {
				return err
			}
			at, err := parseWhenArgs(args[1:])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				if err := rt.store.UpdateReminder(ctx, id, at.Unix()); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "reminder %d moved to %s\n", id, at.Format(timeLayout))
				return err
			})
		},
	}
}

func newReminderDeleteCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  exactArgs("reminder delete", 1, "a reminder id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("reminder", args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				if err := rt.store.DeleteReminder(ctx, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "deleted reminder %d\n", id)
				return err
			})
		},
	}
}
