package main

import (
	"fmt"

	"github.com/jamesainslie/quill/pkg/quill/config"
	"github.com/jamesainslie/quill/pkg/quill/output"
	"github.com/spf13/cobra"
)

func newStateCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show or change the saved view state",
		Long: `The view state remembers the notes directory, the last open note, the
background image and the theme between runs.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the view state",
			Args:  cobra.NoArgs,
			RunE: o.withApp(func(a *app, _ *cobra.Command, _ []string) error {
				return a.print(&output.Report{
					Root:  a.sess.Store().Root(),
					State: a.sess.View(),
				})
			}),
		},
		&cobra.Command{
			Use:   "theme [NAME]",
			Short: "Set the theme (no NAME resets it)",
			Args:  cobra.MaximumNArgs(1),
			RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				a.sess.SetTheme(name)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "background [PATH]",
			Short: "Set the background image (no PATH clears it)",
			Args:  cobra.MaximumNArgs(1),
			RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				a.sess.SetBackground(path)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "dir DIR",
			Short: "Switch the notes directory used by later commands",
			Args:  cobra.ExactArgs(1),
			RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
				dir, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				if err := a.sess.ChangeDir(dir); err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, a.sess.Store().Root())
				return err
			}),
		},
	)
	return cmd
}
