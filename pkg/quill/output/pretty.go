package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Tree glyphs.
const (
	folderOpen   = "▾ "
	folderClosed = "▸ "
	fileIndent   = "  "
	indentUnit   = "  "
	dirtyMark    = " ●"
	cursorMark   = "> "
)

// PrettyFormatter renders styled output for a terminal.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	switch {
	case r.State != nil:
		w.WriteString(f.formatState(r))
	case r.Query != "" || r.Results != nil:
		w.WriteString(f.formatResults(r))
	default:
		w.WriteString(f.formatTree(r))
		w.WriteString(f.formatFooter(r))
	}
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatHeader(r *Report) string {
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Notes:"), ValueStyle.Render(r.Root)),
	}
	if r.Query != "" {
		lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Search:"), ValueStyle.Render(r.Query)))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatTree(r *Report) string {
	if len(r.Tree) == 0 {
		return MutedStyle.Render("  No notes yet") + "\n"
	}

	var sb strings.Builder
	for _, it := range r.Tree {
		if it.Cursor {
			sb.WriteString(cursorMark)
		} else {
			sb.WriteString(indentUnit)
		}
		sb.WriteString(strings.Repeat(indentUnit, it.Depth))
		if it.IsDir {
			glyph := folderOpen
			if it.Collapsed {
				glyph = folderClosed
			}
			sb.WriteString(FolderStyle.Render(glyph + it.Name))
			sb.WriteString("\n")
			continue
		}

		style := FileStyle
		if it.Open {
			style = OpenStyle
		}
		sb.WriteString(fileIndent)
		sb.WriteString(style.Render(it.Name))
		if it.Dirty {
			sb.WriteString(DirtyStyle.Render(dirtyMark))
		}
		if it.Type != "" {
			sb.WriteString("  ")
			sb.WriteString(MutedStyle.Render(it.Type))
		}
		sb.WriteString("  ")
		sb.WriteString(SizeStyle.Render(humanize.IBytes(uint64(it.Size))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *Report) string {
	sum := r.Summarize()
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Files:"), ValueStyle.Render(humanize.Comma(int64(sum.Files)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Folders:"), ValueStyle.Render(humanize.Comma(int64(sum.Folders)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Total:"), SizeStyle.Render(humanize.IBytes(uint64(sum.TotalSize)))),
		MutedStyle.Render("Use --format plain for unformatted output"),
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

func (f *PrettyFormatter) formatResults(r *Report) string {
	if len(r.Results) == 0 {
		return MutedStyle.Render("  No matches") + "\n"
	}

	var sb strings.Builder
	for _, res := range r.Results {
		marker := "  "
		keyStyle := FileStyle
		if res.Selected {
			marker = "> "
			keyStyle = MatchStyle
		}
		sb.WriteString(marker)
		sb.WriteString(keyStyle.Render(res.Key))
		if res.Name {
			sb.WriteString("  ")
			sb.WriteString(MutedStyle.Render("(name)"))
		} else {
			sb.WriteString("  ")
			sb.WriteString(ValueStyle.Render(res.Snippet))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(MutedStyle.Render(fmt.Sprintf("  %s %s",
		humanize.Comma(int64(len(r.Results))), plural(len(r.Results), "match", "matches"))))
	sb.WriteString("\n")
	return sb.String()
}

func (f *PrettyFormatter) formatState(r *Report) string {
	st := r.State
	rows := [][2]string{
		{"Data dir:", st.DataDir},
		{"Last open:", orNone(st.LastOpen())},
		{"Background:", orNone(st.Background())},
		{"Theme:", st.Theme},
	}
	var sb strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&sb, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-11s", row[0])), ValueStyle.Render(row[1]))
	}
	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
