package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/keystore"
)

func newKeyCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect or reset the database encryption key",
	}
	cmd.AddCommand(newKeyBackendCommand(deps), newKeyResetCommand(deps))
	return cmd
}

func newKeyBackendCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Print where the encryption key is kept",
		Args:  noArgs("key backend"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, deps, runtimeOptions{skipStore: true}, func(ctx context.Context, rt *appRuntime) error {
				info := map[string]string{"backend": string(rt.keys.Backend())}
				if fm, ok := rt.keys.(*keystore.FileManager); ok {
					info["path"] = fm.Path()
				} else {
					info["service"] = rt.cfg.Key.Service
				}
				if deps.globals.JSON {
					return printJSON(deps.out, info)
				}
				where := info["path"]
				if where == "" {
					where = "service " + info["service"]
				}
				_, err := fmt.Fprintf(deps.out, "%s (%s)\n", info["backend"], where)
				return err
			})
		},
	}
}

func newKeyResetCommand(deps commandDeps) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the encryption key and the database it protects",
		Long: "Deletes the stored encryption key together with the database file.\n" +
			"Every note, category and reminder is lost. A new key and an empty\n" +
			"database are created on the next run.",
		Args: noArgs("key reset"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageErrorf("key reset destroys all notes; pass --yes to confirm")
			}
			return withRuntime(cmd, deps, runtimeOptions{skipStore: true}, func(ctx context.Context, rt *appRuntime) error {
				keyRemoved := true
				if err := rt.keys.DeleteKey(ctx); err != nil {
					if !apperr.Is(err, apperr.KindNotFound) {
						return err
					}
					keyRemoved = false
				}
				path, err := rt.cfg.DatabasePath()
				if err != nil {
					return err
				}
				removed, err := removeDatabaseFiles(path)
				if err != nil {
					return err
				}
				rt.logger.Warn("encryption key reset", "key_removed", keyRemoved, "files_removed", removed)
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"key_removed": keyRemoved, "files_removed": removed})
				}
				_, err = fmt.Fprintf(deps.out, "key removed: %t, database files removed: %d\n", keyRemoved, len(removed))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm that all data should be destroyed")
	return cmd
}

// removeDatabaseFiles deletes the database and its sqlite side files.
func removeDatabaseFiles(path string) ([]string, error) {
	removed := []string{}
	for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
		name := path + suffix
		if err := os.Remove(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, apperr.New(apperr.KindIO, "remove database", err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
