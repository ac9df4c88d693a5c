package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/model"
	"github.com/sandeepkv93/stickynotes/internal/storage"
	"github.com/sandeepkv93/stickynotes/internal/views"
)

func newNoteCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Create, read and update notes",
		Example: "  stickynotes note new \"buy milk\"\n" +
			"  stickynotes note list --search milk --sort updated_desc\n" +
			"  stickynotes note pin 3",
	}
	cmd.AddCommand(
		newNoteNewCommand(deps),
		newNoteShowCommand(deps),
		newNoteListCommand(deps),
		newNoteEditCommand(deps),
		newNotePinCommand(deps),
		newNoteColorCommand(deps),
		newNoteCategoryCommand(deps),
	)
	return cmd
}

// readContent joins args, or reads stdin when there are none.
func readContent(deps commandDeps, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if deps.in == nil {
		return "", nil
	}
	raw, err := io.ReadAll(deps.in)
	if err != nil {
		return "", fmt.Errorf("read note content: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

func newNoteNewCommand(deps commandDeps) *cobra.Command {
	var screenshot string
	cmd := &cobra.Command{
		Use:   "new [content...]",
		Short: "Create a note (content from arguments or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(deps, args)
			if err != nil {
				return mapCommandError(err)
			}
			var shot *string
			if cmd.Flags().Changed("screenshot") {
				shot = &screenshot
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				id, err := rt.store.CreateNote(ctx, content, shot)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					note, err := rt.store.GetNote(ctx, id)
					if err != nil {
						return err
					}
					return printJSON(deps.out, note)
				}
				_, err = fmt.Fprintf(deps.out, "created note %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Path of a screenshot attached to the note")
	return cmd
}

func newNoteShowCommand(deps commandDeps) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note with rendered markdown",
		Args:  exactArgs("note show", 1, "a note id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				note, err := rt.store.GetNote(ctx, id)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, note)
				}
				return printNote(ctx, deps.out, rt, note, raw)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the content without markdown rendering")
	return cmd
}

func printNote(ctx context.Context, w io.Writer, rt *appRuntime, note storage.Note, raw bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "note %d", note.ID)
	if note.IsPinned {
		b.WriteString(" (pinned)")
	}
	if note.InTrash() {
		fmt.Fprintf(&b, " (in trash since %s)", stamp(*note.DeletedAt))
	}
	b.WriteString("\n")
	if note.CategoryID != nil {
		if c, err := rt.store.GetCategory(ctx, *note.CategoryID); err == nil {
			fmt.Fprintf(&b, "category: %s\n", c.Name)
		}
	}
	if note.Color != nil {
		fmt.Fprintf(&b, "color: %s\n", *note.Color)
	}
	if note.ScreenshotPath != nil {
		fmt.Fprintf(&b, "screenshot: %s\n", *note.ScreenshotPath)
	}
	fmt.Fprintf(&b, "created: %s (%s)\n", stamp(note.CreatedAt), ago(note.CreatedAt))
	fmt.Fprintf(&b, "updated: %s (%s)\n\n", stamp(note.UpdatedAt), ago(note.UpdatedAt))
	content := note.Content
	if !raw {
		if rendered := views.RenderMarkdown(content, 80); rendered != "" {
			content = rendered
		}
	}
	b.WriteString(content)
	_, err := fmt.Fprintln(w, b.String())
	return err
}

func newNoteListCommand(deps commandDeps) *cobra.Command {
	var (
		sortFlag string
		search   string
		category string
		limit    int
		offset   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active notes, pinned first",
		Args:  noArgs("note list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := model.ParseNoteSort(sortFlag)
			if err != nil {
				return usageErrorf("%v", err)
			}
			if limit < 0 || offset < 0 {
				return usageErrorf("--limit and --offset must not be negative")
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				q := storage.NoteQuery{Search: search, Sort: sort, Limit: limit, Offset: offset}
				categories, err := rt.store.ListCategories(ctx)
				if err != nil {
					return err
				}
				if category != "" {
					id, err := resolveCategory(category, categories)
					if err != nil {
						return err
					}
					q.CategoryID = &id
				}
				notes, err := rt.store.ListNotes(ctx, q)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, notes)
				}
				return renderTable(deps.out, []string{"ID", "Pin", "Title", "Category", "Color", "Updated"}, noteRows(notes, categoryNames(categories)))
			})
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", string(model.DefaultNoteSort), "Sort order (created_asc|created_desc|updated_asc|updated_desc)")
	cmd.Flags().StringVar(&search, "search", "", "Only notes whose content contains this text")
	cmd.Flags().StringVar(&category, "category", "", "Only notes in this category (id or name)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of notes (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of notes to skip")
	return cmd
}

// resolveCategory accepts a category id or a case-insensitive name.
func resolveCategory(ref string, categories []storage.Category) (int64, error) {
	if id, err := parseID("category", ref); err == nil {
		return id, nil
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return 0, apperr.NotFound("resolve category", "category %q not found", ref)
}

func newNoteEditCommand(deps commandDeps) *cobra.Command {
	var (
		screenshot string
		pinned     bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id> [content...]",
		Short: "Replace the content of a note (content from arguments or stdin)",
		Args:  minArgs("note edit", 1, "a note id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			content, err := readContent(deps, args[1:])
			if err != nil {
				return mapCommandError(err)
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				note, err := rt.store.GetNote(ctx, id)
				if err != nil {
					return err
				}
				in := storage.NoteUpdate{
					ID:             id,
					Content:        content,
					ScreenshotPath: note.ScreenshotPath,
					IsPinned:       note.IsPinned,
					Color:          note.Color,
					CategoryID:     note.CategoryID,
				}
				if cmd.Flags().Changed("screenshot") {
					in.ScreenshotPath = &screenshot
				}
				if cmd.Flags().Changed("pinned") {
					in.IsPinned = pinned
				}
				if err := rt.store.UpdateNote(ctx, in); err != nil {
					return err
				}
				_, err = fmt.Fprintf(deps.out, "updated note %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&screenshot, "screenshot", "", `Screenshot path ("" clears it)`)
	cmd.Flags().BoolVar(&pinned, "pinned", false, "Set the pinned flag")
	return cmd
}

func newNotePinCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle the pinned flag of a note",
		Args:  exactArgs("note pin", 1, "a note id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				pinned, err := rt.store.TogglePin(ctx, id)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"id": id, "is_pinned": pinned})
				}
				state := "unpinned"
				if pinned {
					state = "pinned"
				}
				_, err = fmt.Fprintf(deps.out, "note %d %s\n", id, state)
				return err
			})
		},
	}
}

func newNoteColorCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "color <id> <color|none>",
		Short: "Set or clear the color tag of a note",
		Args:  exactArgs("note color", 2, "a note id and a color"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			var color *string
			if !strings.EqualFold(args[1], "none") {
				color = &args[1]
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				if err := rt.store.SetNoteColor(ctx, id, color); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "note %d color set to %s\n", id, args[1])
				return err
			})
		},
	}
}

func newNoteCategoryCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "category <id> <category|none>",
		Short: "Move a note into a category (id or name) or out of it",
		Args:  exactArgs("note category", 2, "a note id and a category"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				var categoryID *int64
				if !strings.EqualFold(args[1], "none") {
					categories, err := rt.store.ListCategories(ctx)
					if err != nil {
						return err
					}
					cid, err := resolveCategory(args[1], categories)
					if err != nil {
						return err
					}
					categoryID = &cid
				}
				if err := rt.store.SetNoteCategory(ctx, id, categoryID); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "note %d category set to %s\n", id, args[1])
				return err
			})
		},
	}
}
