package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jamesainslie/quill/pkg/quill/output"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	cfgFile string
	dir     string
	format  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quill",
		Short: "Keep plain-text notes in a directory",
		Long: `Quill manages a directory of plain-text notes. Files are keyed by their
slash-separated path below the notes directory; folders are implied by the
keys.

Examples:
  quill tree                      # List notes as a tree
  quill new --content "hello"     # Create "new file", "new file 1", ...
  echo hi | quill write ideas/a   # Write a note from stdin
  quill search -c rain            # Search note contents
  quill mv "new file" journal/day # Rename a note
  quill watch                     # Follow changes made by other programs`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(output.Available(), opts.format) {
				return fmt.Errorf("unknown format %q (available: %s)",
					opts.format, strings.Join(output.Available(), ", "))
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: ~/.config/quill/config.yaml)")
	flags.StringVarP(&opts.dir, "dir", "d", "", "notes directory (default: last used, then data_dir)")
	flags.StringVarP(&opts.format, "format", "o", "pretty", "output format: "+strings.Join(output.Available(), ", "))
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug output on stderr")

	cmd.AddCommand(
		newTreeCmd(opts),
		newCollapseCmd(opts),
		newCatCmd(opts),
		newNewCmd(opts),
		newWriteCmd(opts),
		newMvCmd(opts),
		newRmCmd(opts),
		newSearchCmd(opts),
		newStateCmd(opts),
		newConfigCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
