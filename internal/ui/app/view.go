package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
	"github.com/zjrosen/dread/internal/ui/styles"
)

const (
	minPanelWidth = 24
	maxPanelWidth = 56
)

// View renders the player.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	snap := m.player.Snapshot()
	width := min(max(m.width-2, minPanelWidth), maxPanelWidth)

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderNowPlaying(snap, width),
		m.renderSceneButtons(snap, width),
		"",
		m.help.View(m.keys),
	)
	view := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
	return m.zones.Scan(view)
}

func (m Model) renderNowPlaying(snap player.Snapshot, width int) string {
	title := "dread"
	if !snap.Current.IsZero() {
		title = scene.Glyph(snap.Current.ID()) + " " + snap.Current.Name()
	}

	lines := []string{
		styles.TrackTitleStyle.Render(snap.Title),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			m.zones.Mark(playZoneID, styles.PlayButtonStyle.Render(styles.TransportGlyph(snap.Playing()))),
			"  ",
			styles.ElapsedStyle.Render(player.FormatElapsed(snap.Elapsed)),
			"  ",
			m.renderStatus(snap),
		),
	}
	if snap.Err != nil {
		lines = append(lines, "", styles.ErrorStyle.Render(snap.Err.Error()))
	}
	return styles.RenderPanel(strings.Join(lines, "\n"), title, width, 0, snap.Playing())
}

func (m Model) renderStatus(snap player.Snapshot) string {
	switch snap.State {
	case player.StateLoading:
		return m.spinner.View() + " " + styles.MutedStyle.Render("loading")
	case player.StatePlaying:
		return styles.StatusPlayingStyle.Render("playing")
	case player.StatePaused:
		return styles.MutedStyle.Render("paused")
	default:
		return styles.MutedStyle.Render("stopped")
	}
}

func (m Model) renderSceneButtons(snap player.Snapshot, width int) string {
	buttons := make([]string, 0, len(snap.Scenes))
	for i, sc := range snap.Scenes {
		style := styles.SceneButtonStyle
		switch {
		case sc.ID() == snap.Current.ID() && snap.HasSession:
			style = styles.ActiveButtonStyle
		case i == m.highlight:
			style = styles.HighlitButtonStyle
		}
		label := styles.FormatSceneButton(i+1, scene.Glyph(sc.ID()), sc.Name())
		buttons = append(buttons, m.zones.Mark(sceneZoneID+string(sc.ID()), style.Render(label)))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
}
