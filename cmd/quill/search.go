package main

import (
	"github.com/jamesainslie/quill/pkg/quill/output"
	"github.com/jamesainslie/quill/pkg/quill/search"
	"github.com/spf13/cobra"
)

func newSearchCmd(o *rootOptions) *cobra.Command {
	var (
		flags search.Flags
		next  int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search note names and contents",
		Long: `Search note names and/or contents. With neither --name nor --contents
both are searched. Queries are literal unless --regex is given and
case-insensitive unless --case is given.`,
		Args: cobra.ExactArgs(1),
		RunE: o.withApp(func(a *app, _ *cobra.Command, args []string) error {
			f := flags
			if !f.MatchName && !f.MatchContents {
				f.MatchName, f.MatchContents = true, true
			}
			results := a.sess.Search(f, args[0])
			for range next {
				a.sess.MoveDown()
			}
			a.logger.Debug("search", "query", args[0], "results", len(results))
			return a.print(&output.Report{
				Root:    a.sess.Store().Root(),
				Query:   args[0],
				Results: a.sess.Results(),
			})
		}),
	}

	cmd.Flags().BoolVarP(&flags.MatchName, "name", "n", false, "match note names")
	cmd.Flags().BoolVarP(&flags.MatchContents, "contents", "c", false, "match note contents")
	cmd.Flags().BoolVar(&flags.MatchCase, "case", false, "case-sensitive match")
	cmd.Flags().BoolVarP(&flags.UseRegex, "regex", "r", false, "treat QUERY as a regular expression")
	cmd.Flags().IntVar(&next, "next", 0, "move the selection down N results (wraps)")
	return cmd
}
