package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoryCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage note categories",
	}
	cmd.AddCommand(
		newCategoryAddCommand(deps),
		newCategoryListCommand(deps),
		newCategoryRenameCommand(deps),
		newCategoryDeleteCommand(deps),
	)
	return cmd
}

func colorFlag(cmd *cobra.Command, value string) *string {
	if !cmd.Flags().Changed("color") {
		return nil
	}
	return &value
}

func newCategoryAddCommand(deps commandDeps) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Create a category",
		Args:  minArgs("category add", 1, "a name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				id, err := rt.store.CreateCategory(ctx, name, colorFlag(cmd, color))
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					c, err := rt.store.GetCategory(ctx, id)
					if err != nil {
						return err
					}
					return printJSON(deps.out, c)
				}
				_, err = fmt.Fprintf(deps.out, "created category %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Color tag")
	return cmd
}

func newCategoryListCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories by name",
		Args:  noArgs("category list"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				categories, err := rt.store.ListCategories(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, categories)
				}
				rows := make([][]string, 0, len(categories))
				for _, c := range categories {
					rows = append(rows, []string{idString(c.ID), c.Name, optional(c.Color)})
				}
				return renderTable(deps.out, []string{"ID", "Name", "Color"}, rows)
			})
		},
	}
}

func newCategoryRenameCommand(deps commandDeps) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "rename <id> <name...>",
		Short: "Rename a category and optionally change its color",
		Args:  minArgs("category rename", 2, "a category id and a name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("category", args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				current, err := rt.store.GetCategory(ctx, id)
				if err != nil {
					return err
				}
				newColor := current.Color
				if cmd.Flags().Changed("color") {
					newColor = colorFlag(cmd, color)
				}
				if err := rt.store.UpdateCategory(ctx, id, name, newColor); err != nil {
					return err
				}
				_, err = fmt.Fprintf(deps.out, "updated category %d\n", id)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", `Color tag ("" clears it)`)
	return cmd
}

func newCategoryDeleteCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; its notes become uncategorized",
		Args:  exactArgs("category delete", 1, "a category id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("category", args[0])
			if err != nil {
				return err
			}
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				if err := rt.store.DeleteCategory(ctx, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(deps.out, "deleted category %d\n", id)
				return err
			})
		},
	}
}
