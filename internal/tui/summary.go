package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// SummaryRow is one labelled value in the end-of-run box.
type SummaryRow struct {
	Label string
	Value string
	// Alert highlights the value, for counts the operator should look at.
	Alert bool
}

var (
	summaryBox   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted).Padding(0, 1)
	summaryValue = lipgloss.NewStyle().Bold(true).Foreground(ColorOriginal)
	summaryAlert = lipgloss.NewStyle().Bold(true).Foreground(ColorProblem)
)

// RenderSummary lays rows out as two aligned columns inside a rounded box.
func RenderSummary(rows []SummaryRow) string {
	labels := make([]string, 0, len(rows))
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, labelStyle.Render(row.Label))
		style := summaryValue
		if row.Alert {
			style = summaryAlert
		}
		values = append(values, style.Render(row.Value))
	}

	left := lipgloss.JoinVertical(lipgloss.Left, labels...)
	right := lipgloss.JoinVertical(lipgloss.Right, values...)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, dimStyle.Render("  "), right)
	return summaryBox.Render(body)
}
