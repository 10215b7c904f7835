package tui

import (
	"github.com/charmbracelet/lipgloss"

	"mediadedup/pkg/imgutil"
)

// Shared colors for the progress view, prompt and command output.
var (
	ColorText      = lipgloss.Color("#E5E9F0")
	ColorMuted     = lipgloss.Color("#7A8291")
	ColorHeading   = lipgloss.Color("#88C0D0")
	ColorLabel     = lipgloss.Color("#81A1C1")
	ColorOriginal  = lipgloss.Color("#A3BE8C")
	ColorDuplicate = lipgloss.Color("#D08770")
	ColorProblem   = lipgloss.Color("#EBCB8B")
)

var kindColors = map[imgutil.Kind]lipgloss.Color{
	imgutil.KindJPEG: lipgloss.Color("#B48EAD"),
	imgutil.KindPNG:  lipgloss.Color("#8FBCBB"),
	imgutil.KindWebM: lipgloss.Color("#5E81AC"),
	imgutil.KindGIF:  ColorMuted,
}

// KindBadge renders a format name in its own color. Unknown files use the
// problem color.
func KindBadge(kind imgutil.Kind) string {
	color, ok := kindColors[kind]
	if !ok {
		color = ColorProblem
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(kind.String())
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeading)
	labelStyle = lipgloss.NewStyle().Foreground(ColorText)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	errorStyle = lipgloss.NewStyle().Foreground(ColorProblem)
)
