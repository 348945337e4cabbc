package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/quill/pkg/quill/config"
	"github.com/jamesainslie/quill/pkg/quill/logging"
	"github.com/spf13/cobra"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage quill configuration settings.

Configuration is loaded from:
  1. --config, if given
  2. $XDG_CONFIG_HOME/quill/config.yaml (if set)
  3. ~/.config/quill/config.yaml

Environment variables override config file settings using the QUILL_ prefix:
  QUILL_DATA_DIR=~/notes
  QUILL_DELETE_MODE=trash
  QUILL_SEARCH_CONTEXT=16`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return o.runConfigShow(cmd)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), o.configPath())
				return err
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := o.configPath()
				written, err := config.WriteDefault(path)
				if err != nil {
					return err
				}
				if !written {
					fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created default config file: %s\n", path)
				return nil
			},
		},
	)
	return cmd
}

func (o *rootOptions) configPath() string {
	if o.cfgFile != "" {
		return o.cfgFile
	}
	return config.ConfigPath()
}

func (o *rootOptions) runConfigShow(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	w := cmd.OutOrStdout()
	path := o.configPath()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "Config file: %s\n\n", path)
	} else {
		fmt.Fprintf(w, "Config file: (using defaults, no file found)\n\n")
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "data_dir:             %s\n", cfg.DataDir)
	fmt.Fprintf(w, "state_path:           %s\n", cfg.StatePath)
	fmt.Fprintf(w, "new_file_name:        %s\n", cfg.NewFileName)
	fmt.Fprintf(w, "exclude:              %s\n", strings.Join(cfg.Exclude, ", "))
	fmt.Fprintf(w, "images:               %s\n", strings.Join(cfg.Images, ", "))
	fmt.Fprintf(w, "delete_mode:          %s\n", cfg.Mode())
	fmt.Fprintf(w, "workers:              %d\n", cfg.Workers)
	fmt.Fprintf(w, "search.context:       %d\n", cfg.Search.Context)
	fmt.Fprintf(w, "logging.level:        %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:         %s\n", orDefault(cfg.Logging.Path, logging.DefaultLogPath()))

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	found := false
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "QUILL_") {
			fmt.Fprintln(w, kv)
			found = true
		}
	}
	if !found {
		fmt.Fprintln(w, "(none)")
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
