package scene

// glyphs maps preset ids to the icon drawn next to the scene name.
var glyphs = map[ID]string{
	Sea:    "🌊",
	Camp:   "⛺",
	Forest: "🌲",
}

// fallbackGlyph is used for user-defined scenes.
const fallbackGlyph = "♪"

// Glyph returns the display icon for a scene id.
func Glyph(id ID) string {
	if g, ok := glyphs[id]; ok {
		return g
	}
	return fallbackGlyph
}
