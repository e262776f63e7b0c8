package styles

import "github.com/charmbracelet/lipgloss"

// Styles used by the player view. Rebuilt by ApplyTheme.
var (
	AppStyle           lipgloss.Style
	HeaderStyle        lipgloss.Style
	SceneNameStyle     lipgloss.Style
	TrackTitleStyle    lipgloss.Style
	ElapsedStyle       lipgloss.Style
	PlayButtonStyle    lipgloss.Style
	SceneButtonStyle   lipgloss.Style
	ActiveButtonStyle  lipgloss.Style
	HighlitButtonStyle lipgloss.Style
	SpinnerStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style
	MutedStyle         lipgloss.Style
	StatusPlayingStyle lipgloss.Style
	HelpKeyStyle       lipgloss.Style
	HelpDescStyle      lipgloss.Style
)

func rebuildStyles() {
	AppStyle = lipgloss.NewStyle().
		Foreground(TextPrimaryColor).
		Background(BackgroundColor)

	HeaderStyle = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	SceneNameStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(true)
	TrackTitleStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Italic(true)
	ElapsedStyle = lipgloss.NewStyle().Foreground(AccentColor)

	PlayButtonStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true).
		Padding(0, 2)

	button := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	SceneButtonStyle = button.
		Foreground(TextSecondaryColor).
		BorderForeground(BorderDefaultColor)
	ActiveButtonStyle = button.
		Foreground(AccentColor).
		BorderForeground(AccentColor).
		Bold(true)
	HighlitButtonStyle = button.
		Foreground(TextPrimaryColor).
		BorderForeground(BorderFocusColor)

	SpinnerStyle = lipgloss.NewStyle().Foreground(AccentColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	StatusPlayingStyle = lipgloss.NewStyle().Foreground(StatusPlayingColor)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	HelpDescStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
}
