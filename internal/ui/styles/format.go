package styles

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Transport glyphs.
const (
	PlayGlyph  = "▶"
	PauseGlyph = "❚❚"
)

// TransportGlyph is the glyph for the action the play button performs.
func TransportGlyph(playing bool) string {
	if playing {
		return PauseGlyph
	}
	return PlayGlyph
}

// FormatSceneButton labels a scene button with its hotkey. Positions past
// nine have no hotkey.
func FormatSceneButton(position int, glyph, name string) string {
	if position >= 1 && position <= 9 {
		return fmt.Sprintf("%d %s %s", position, glyph, name)
	}
	return glyph + " " + name
}

// FitWidth truncates or pads plain text to exactly width cells. Wide
// characters such as 海 count as two.
func FitWidth(s string, width int) string {
	if width < 1 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, ellipsis), width)
}
