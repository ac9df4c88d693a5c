package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTrashCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Soft-delete, restore and purge notes",
		Example: "  stickynotes trash move 4 5\n" +
			"  stickynotes trash restore 4\n" +
			"  stickynotes trash cleanup --days 30",
	}
	cmd.AddCommand(
		newTrashListCommand(deps),
		newTrashBatchCommand(deps, "move", "Move notes to the trash", "moved %d note(s) to trash\n",
			func(ctx context.Context, rt *appRuntime, ids []int64) (int, error) {
				return rt.store.MoveToTrash(ctx, ids)
			}),
		newTrashBatchCommand(deps, "restore", "Restore notes from the trash", "restored %d note(s)\n",
			func(ctx context.Context, rt *appRuntime, ids []int64) (int, error) {
				return rt.store.RestoreFromTrash(ctx, ids)
			}),
		newTrashBatchCommand(deps, "delete", "Permanently delete notes and their reminders", "deleted %d note(s)\n",
			func(ctx context.Context, rt *appRuntime, ids []int64) (int, error) {
				return rt.store.PermanentlyDelete(ctx, ids)
			}),
		newTrashCleanupCommand(deps),
	)
	return cmd
}

func newTrashListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trashed notes, most recently deleted first",
		Args:  noArgs("trash list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				notes, err := rt.store.ListTrash(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, notes)
				}
				categories, err := rt.store.ListCategories(ctx)
				if err != nil {
					return err
				}
				return renderTable(deps.out, []string{"ID", "Pin", "Title", "Category", "Color", "Deleted"}, noteRows(notes, categoryNames(categories)))
			})
		},
	}
}

type trashBatchFunc func(ctx context.Context, rt *appRuntime, ids []int64) (int, error)

func newTrashBatchCommand(deps commandDeps, name, short, done string, run trashBatchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>...",
		Short: short,
		Args:  minArgs("trash "+name, 1, "at least one note id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs("note", args)
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				n, err := run(ctx, rt, ids)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]int{"affected": n})
				}
				_, err = fmt.Fprintf(deps.out, done, n)
				return err
			})
		},
	}
}

func newTrashCleanupCommand(deps commandDeps) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Permanently delete notes trashed longer than the retention period",
		Args:  noArgs("trash cleanup"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				retention := rt.cfg.Trash.RetentionDays
				if cmd.Flags().Changed("days") {
					retention = days
				}
				n, err := rt.store.CleanupTrash(ctx, retention)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]int{"removed": n, "retention_days": retention})
				}
				_, err = fmt.Fprintf(deps.out, "removed %d note(s) trashed more than %d day(s) ago\n", n, retention)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default: trash.retention_days)")
	return cmd
}
