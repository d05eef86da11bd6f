package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/regdesk/pkg/cli/internal/output"
	"github.com/getmockd/regdesk/pkg/config"
	"github.com/getmockd/regdesk/pkg/store"
)

// configShowOutput is the JSON form of config show.
type configShowOutput struct {
	Mode    config.Mode    `json:"mode"`
	Files   []string       `json:"files"`
	Entries []config.Entry `json:"entries"`
}

func newConfigCmd(e *env) *cobra.Command {
	show := func(cmd *cobra.Command, _ []string) error {
		files := e.cfg.Files
		if files == nil {
			files = []string{}
		}
		out := configShowOutput{Mode: e.cfg.Mode(), Files: files, Entries: e.cfg.Entries()}
		return e.printResult(cmd, out, func(w io.Writer) error {
			fmt.Fprintf(w, "Mode: %s\n", out.Mode)
			if len(files) > 0 {
				fmt.Fprintf(w, "Files: %s\n", strings.Join(files, ", "))
			}
			fmt.Fprintln(w)
			tw := output.Table(w)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE\tENV")
			for _, en := range out.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", en.Key, en.Value, en.Source, en.Env)
			}
			return tw.Flush()
		})
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit configuration",
		Long: `Show and edit configuration.

Values are resolved from defaults, the global config file, the local
.regdeskrc.yaml (or --config), environment variables and flags, in that
order. Every value shows where it came from.`,
		Args: cobra.NoArgs,
		RunE: show,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE:  show,
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "get <key>",
		Short:     "Print one resolved value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := e.cfg.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown config key %q (known: %s)", args[0], strings.Join(config.Keys(), ", "))
			}
			entry := config.Entry{Key: args[0], Value: v, Source: e.cfg.Source(args[0])}
			return e.printResult(cmd, entry, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, v)
				return err
			})
		},
	})

	var global bool
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a value to a config file",
		Long: `Write a value to a config file.

The value goes to --config when given, to the global config file with
--global, and to .regdeskrc.yaml in the working directory otherwise.`,
		Example: `  regdesk config set useMockData false
  regdesk config set apiBaseUrl https://registry.example/api/v1 --global`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := e.configTarget(global)
			if err != nil {
				return err
			}
			fileCfg := config.NewDefault()
			if _, err := os.Stat(path); err == nil {
				if err := fileCfg.LoadFile(path, config.SourceFile); err != nil {
					return err
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := fileCfg.Set(args[0], args[1], config.SourceFile); err != nil {
				return err
			}
			if err := fileCfg.Validate(); err != nil {
				return err
			}
			if err := fileCfg.Save(path); err != nil {
				return err
			}
			v, _ := fileCfg.Get(args[0])
			return e.printMessage(cmd, "Set %s = %s in %s", args[0], v, path)
		},
	}
	set.Flags().BoolVar(&global, "global", false, "Write to the global config file")
	cmd.AddCommand(set)

	return cmd
}

// configTarget returns the file config set writes to.
func (e *env) configTarget(global bool) (string, error) {
	switch {
	case global:
		dir := e.opts.GlobalDir
		if dir == "" {
			dir = store.DefaultConfigDir()
		}
		return filepath.Join(dir, config.GlobalConfigFileNames[0]), nil
	case e.flags.configPath != "":
		return e.flags.configPath, nil
	}
	dir := e.opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Join(dir, config.LocalConfigFileNames[0]), nil
}
