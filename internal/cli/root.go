// Package cli is the stickynotes command line: note, trash, category and
// reminder management over the encrypted store, plus the reminder service
// and the terminal UI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// GlobalOptions are the persistent flags that are not config keys.
type GlobalOptions struct {
	ConfigFile string
	JSON       bool
}

type commandDeps struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	globals *GlobalOptions
}

func NewRootCommand(in io.Reader, out, errOut io.Writer, build BuildInfo) *cobra.Command {
	globals := &GlobalOptions{}
	deps := commandDeps{in: in, out: out, errOut: errOut, globals: globals}

	cmd := &cobra.Command{
		Use:           "stickynotes",
		Short:         "Encrypted sticky notes with reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.ConfigFile, "config", "", "Config file (default: <user config dir>/stickynotes/stickynotes.yaml)")
	flags.BoolVar(&globals.JSON, "json", false, "Print machine readable JSON")
	flags.String("data-dir", "", "Directory holding the database and logs")
	flags.String("db-file", "", "Database file name or absolute path")
	flags.String("key-backend", "", "Key storage backend (auto|keyring|file)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-file", "", `Log file path, "off" to disable`)

	cmd.AddCommand(
		newVersionCommand(deps, build),
		newNoteCommand(deps),
		newTrashCommand(deps),
		newCategoryCommand(deps),
		newReminderCommand(deps),
		newKeyCommand(deps),
		newServeCommand(deps),
		newTUICommand(deps),
		newConfigCommand(deps),
	)
	return cmd
}

func newVersionCommand(deps commandDeps, build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  noArgs("version"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.globals.JSON {
				return printJSON(deps.out, build)
			}
			_, err := fmt.Fprintf(deps.out, "version=%s commit=%s build_time=%s\n", build.Version, build.Commit, build.BuildTime)
			return err
		},
	}
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
