package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/quill/pkg/quill/state"
)

// PlainFormatter writes unstyled, line-oriented output for scripts: one
// path per tree row, one tab-separated line per search result.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Report) error {
	for _, it := range r.Tree {
		path := it.Path
		if it.IsDir {
			path += "/"
		}
		if it.Cursor {
			w.WriteString("> ")
		}
		w.WriteString(path)
		w.WriteByte('\n')
	}

	for _, res := range r.Results {
		kind := "contents"
		if res.Name {
			kind = "name"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", res.Key, kind, res.Start, res.End, escapeTabs(res.Snippet))
	}

	if r.State != nil {
		writeState(w, r.State)
	}
	return nil
}

func writeState(w *bytes.Buffer, st *state.State) {
	fmt.Fprintf(w, "data_dir\t%s\n", st.DataDir)
	fmt.Fprintf(w, "last_open_file\t%s\n", st.LastOpen())
	fmt.Fprintf(w, "background_image_path\t%s\n", st.Background())
	fmt.Fprintf(w, "theme\t%s\n", st.Theme)
}

func escapeTabs(s string) string {
	return strings.ReplaceAll(s, "\t", `\t`)
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
