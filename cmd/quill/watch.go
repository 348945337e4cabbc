package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesainslie/quill/pkg/quill/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow changes made to the notes directory by other programs",
		Long: `Watch the notes directory and fold outside changes into the loaded notes:
new files are tracked, changed files are reloaded and deleted files are
dropped. Notes with unsaved changes are never overwritten. Each applied
change is printed as "<op>\t<key>". Stops on interrupt.`,
		Args: cobra.NoArgs,
		RunE: o.withApp(func(a *app, cmd *cobra.Command, _ []string) error {
			st := a.sess.Store()
			w, err := watcher.New(st.Root(), watcher.WithFilter(st.Excluded))
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer func() { _ = w.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			a.logger.Info("watching", "root", st.Root(), "dirs", w.Watched())
			w.Run(ctx, func(ev watcher.Event) {
				if a.sess.Reconcile(ev) {
					fmt.Fprintf(a.out, "%s\t%s\n", ev.Op, ev.Key)
				}
			})
			return nil
		}),
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop after this long (0 runs until interrupted)")
	return cmd
}
