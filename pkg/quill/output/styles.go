package output

import "github.com/charmbracelet/lipgloss"

// ANSI 256-color palette shared by the pretty formatter.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorMuted   = lipgloss.Color("245")
	ColorMatch   = lipgloss.Color("205")
)

var (
	// HeaderBox frames the root and query line.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox frames the summary line.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

var (
	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// FolderStyle renders folder rows.
	FolderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// FileStyle renders file rows.
	FileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	// OpenStyle renders the file that is open.
	OpenStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)

	// DirtyStyle renders the unsaved marker.
	DirtyStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// MatchStyle highlights the selected search result.
	MatchStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMatch)

	SizeStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)
