package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/shadow-rank/internal/model"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#928374"))
	styleBold   = lipgloss.NewStyle().Bold(true)

	rankStyles = map[model.Rank]lipgloss.Style{
		model.RankE: lipgloss.NewStyle().Foreground(lipgloss.Color("#928374")),
		model.RankD: lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c")),
		model.RankC: lipgloss.NewStyle().Foreground(lipgloss.Color("#83a598")),
		model.RankB: lipgloss.NewStyle().Foreground(lipgloss.Color("#d3869b")),
		model.RankA: lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f")).Bold(true),
	}
)

func renderRank(r model.Rank) string {
	if s, ok := rankStyles[r]; ok {
		return s.Render(string(r))
	}
	return string(r)
}

// renderTable lays out rows in padded columns. Widths are measured on the
// visible text so styled cells still line up.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	const colGap = 2
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			b.WriteString(style(cell))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", max(pad, 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return styleHeader.Render(s) })
	sep := make([]string, cols)
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(sep, func(s string) string { return styleDim.Render(s) })
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}
