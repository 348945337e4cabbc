package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jamesainslie/quill/pkg/quill/entry"
	"github.com/jamesainslie/quill/pkg/quill/output"
	"github.com/jamesainslie/quill/pkg/quill/pathkey"
	"github.com/jamesainslie/quill/pkg/quill/session"
	"github.com/jamesainslie/quill/pkg/quill/tree"
	"github.com/spf13/cobra"
)

func newTreeCmd(o *rootOptions) *cobra.Command {
	var (
		at       string
		down, up int
	)

	cmd := &cobra.Command{
		Use:     "tree",
		Aliases: []string{"ls"},
		Short:   "List notes as a tree",
		Long: `List notes as a tree. --at, --down and --up place a cursor the way the
arrow keys move it in a file tree; it starts on the last open note.`,
		Args: cobra.NoArgs,
		RunE: o.withApp(func(a *app, cmd *cobra.Command, _ []string) error {
			r := a.listing()
			if cmd.Flags().Changed("at") || down > 0 || up > 0 {
				if at == "" {
					at = a.sess.View().LastOpen()
				}
				placeCursor(r, pathkey.Normalize(at), down, up)
			}
			return a.print(r)
		}),
	}
	cmd.Flags().StringVar(&at, "at", "", "start the cursor on this path")
	cmd.Flags().IntVar(&down, "down", 0, "move the cursor down N rows")
	cmd.Flags().IntVar(&up, "up", 0, "move the cursor up N rows")
	return cmd
}

// placeCursor marks the row a tree cursor lands on.
func placeCursor(r *output.Report, at string, down, up int) {
	nodes := make([]tree.Node, len(r.Tree))
	for i, it := range r.Tree {
		nodes[i] = it.Node
	}
	v := tree.NewView(nodes)
	if at != "" {
		v.Select(at)
	}
	for range down {
		v.MoveDown()
	}
	for range up {
		v.MoveUp()
	}
	if v.Selected() != nil {
		r.Tree[v.Cursor()].Cursor = true
	}
}

func newCollapseCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collapse FOLDER...",
		Short: "List notes with folders collapsed",
		Long: `Toggle the given folders and print the resulting tree. Collapse state
lives only for the duration of the command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
			for _, folder := range args {
				a.sess.ToggleFolder(folder)
			}
			return a.print(a.listing())
		}),
	}
}

func newCatCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat [KEY]",
		Short: "Print a note",
		Long: `Open a note and print its contents. Without KEY the note that was open
last is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
			if len(args) == 0 {
				key, err := a.sess.Restore()
				if err != nil {
					return err
				}
				if key == "" {
					return session.ErrNoFile
				}
			} else if _, err := a.sess.Open(args[0]); err != nil {
				return err
			}
			_, err := io.WriteString(a.out, a.editor.Text())
			return err
		}),
	}
}

func newNewCmd(o *rootOptions) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note",
		Long: `Create a note under the first free key derived from new_file_name
("new file", "new file 1", ...) and print the key.`,
		Args: cobra.NoArgs,
		RunE: o.withApp(func(a *app, cmd *cobra.Command, _ []string) error {
			var key string
			var err error
			if cmd.Flags().Changed("content") {
				a.editor.SetText(content)
				key, err = a.sess.Edited()
			} else {
				key, err = a.sess.NewFile()
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, key)
			return err
		}),
	}
	cmd.Flags().StringVarP(&content, "content", "c", "", "initial contents")
	return cmd
}

func newWriteCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write KEY",
		Short: "Write a note from stdin",
		Long:  `Replace the contents of KEY with stdin, creating the note if needed.`,
		Args:  cobra.ExactArgs(1),
		RunE: o.withApp(func(a *app, cmd *cobra.Command, args []string) error {
			key := pathkey.Normalize(args[0])
			if err := pathkey.Validate(key); err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}

			if a.sess.Store().Contains(key) {
				if _, err := a.sess.Open(key); err != nil && !errors.Is(err, entry.ErrUnreadable) {
					return err
				}
				a.editor.SetText(string(data))
				if _, err := a.sess.Edited(); err != nil {
					return err
				}
			} else if err := a.sess.Store().Insert(key, string(data)); err != nil {
				return err
			}

			if err := a.sess.Save(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, key)
			return err
		}),
	}
}

func newMvCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "mv OLD NEW",
		Aliases: []string{"rename"},
		Short:   "Rename a note",
		Long: `Rename a note and print the key it ended up under. If NEW is taken a
numeric suffix is appended.`,
		Args: cobra.ExactArgs(2),
		RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
			old, err := a.requireKey(args[0])
			if err != nil {
				return err
			}

			var final string
			if e, _ := a.sess.Store().Entry(old); e.Kind() == entry.KindImage {
				final, err = a.sess.Store().Rename(old, args[1])
			} else {
				if _, err := a.sess.Open(old); err != nil {
					return err
				}
				final, err = a.sess.Rename(args[1])
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, final)
			return err
		}),
	}
}

func newRmCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY...",
		Aliases: []string{"delete"},
		Short:   "Delete notes",
		Long:    `Delete notes from disk, or move them to the trash with delete_mode: trash.`,
		Args:    cobra.MinimumNArgs(1),
		RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
			for _, arg := range args {
				key, err := a.requireKey(arg)
				if err != nil {
					return err
				}
				if err := a.sess.Delete(key); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}
