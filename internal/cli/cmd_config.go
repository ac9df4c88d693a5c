package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/config"
	"github.com/sandeepkv93/stickynotes/internal/keystore"
)

func newConfigCommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and inspect the configuration file",
	}
	cmd.AddCommand(
		newConfigInitCommand(deps),
		newConfigShowCommand(deps),
		newConfigPathCommand(deps),
	)
	return cmd
}

func configFilePath(deps commandDeps) (string, error) {
	if deps.globals.ConfigFile != "" {
		return deps.globals.ConfigFile, nil
	}
	return config.DefaultFile()
}

func newConfigInitCommand(deps commandDeps) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  noArgs("config init"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(deps)
			if err != nil {
				return mapCommandError(err)
			}
			c, err := config.Default()
			if err != nil {
				return mapCommandError(err)
			}
			if err := config.WriteFile(path, c, force); err != nil {
				return usageErrorf("%v", err)
			}
			_, err = fmt.Fprintf(deps.out, "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after files, environment and flags",
		Args:  noArgs("config show"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cmd, deps.globals.ConfigFile)
			if err != nil {
				return usageErrorf("%v", err)
			}
			if deps.globals.JSON {
				return printJSON(deps.out, c)
			}
			data, err := config.Marshal(c)
			if err != nil {
				return mapCommandError(err)
			}
			_, err = deps.out.Write(data)
			return err
		},
	}
}

type pathReport struct {
	ConfigFile string `json:"config_file"`
	DataDir    string `json:"data_dir"`
	Database   string `json:"database"`
	LogFile    string `json:"log_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
}

func newConfigPathCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the files stickynotes reads and writes",
		Args:  noArgs("config path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cmd, deps.globals.ConfigFile)
			if err != nil {
				return usageErrorf("%v", err)
			}
			var report pathReport
			if report.ConfigFile, err = configFilePath(deps); err != nil {
				return mapCommandError(err)
			}
			if report.DataDir, err = c.ResolvedDataDir(); err != nil {
				return mapCommandError(err)
			}
			if report.Database, err = c.DatabasePath(); err != nil {
				return mapCommandError(err)
			}
			if report.LogFile, err = c.LogFilePath(); err != nil {
				return mapCommandError(err)
			}
			if backend, _ := keystore.ParseBackend(c.Key.Backend); backend == keystore.BackendFile {
				dir := c.Key.Dir
				if dir == "" {
					if dir, err = keystore.DefaultDir(); err != nil {
						return mapCommandError(err)
					}
				}
				report.KeyFile = keystore.NewFileManager(dir).Path()
			}
			if deps.globals.JSON {
				return printJSON(deps.out, report)
			}
			_, err = fmt.Fprintf(deps.out, "config:   %s\ndata dir: %s\ndatabase: %s\nlog file: %s\nkey file: %s\n",
				report.ConfigFile, report.DataDir, report.Database, orDash(report.LogFile), orDash(report.KeyFile))
			return err
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
