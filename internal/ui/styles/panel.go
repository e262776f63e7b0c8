package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const ellipsis = "…"

// RenderPanel draws content inside a rounded box of the given outer width
// with title set into the top edge: ╭─ title ────╮. Content lines wider
// than the box are truncated. height <= 0 sizes the box to its content.
func RenderPanel(content, title string, width, height int, focused bool) string {
	inner := max(width-2, 1)

	edge := BorderDefaultColor
	if focused {
		edge = BorderFocusColor
	}
	border := lipgloss.NewStyle().Foreground(edge)

	lines := strings.Split(content, "\n")
	if height > 0 {
		rows := max(height-2, 1)
		if len(lines) > rows {
			lines = lines[:rows]
		}
		for len(lines) < rows {
			lines = append(lines, "")
		}
	}

	var b strings.Builder
	b.WriteString(panelTop(title, inner, border))
	for _, line := range lines {
		line = Truncate(line, inner)
		if pad := inner - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		b.WriteString("\n")
		b.WriteString(border.Render("│"))
		b.WriteString(line)
		b.WriteString(border.Render("│"))
	}
	b.WriteString("\n")
	b.WriteString(border.Render("╰" + strings.Repeat("─", inner) + "╯"))
	return b.String()
}

func panelTop(title string, inner int, border lipgloss.Style) string {
	// "─ " + title + " " needs at least one trailing rule.
	room := inner - 4
	if title == "" || room < 1 {
		return border.Render("╭" + strings.Repeat("─", inner) + "╮")
	}
	title = Truncate(title, room)
	rest := inner - 3 - lipgloss.Width(title)
	return border.Render("╭─ ") +
		HeaderStyle.Render(title) +
		border.Render(" "+strings.Repeat("─", rest)+"╮")
}

// Truncate shortens s, which may contain ANSI styling, to at most width
// cells, ending in an ellipsis when anything was cut.
func Truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), ellipsis)
}
