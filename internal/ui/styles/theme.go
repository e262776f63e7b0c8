// Package styles contains Lip Gloss style definitions.
package styles

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// ColorToken names a themeable color.
type ColorToken string

const (
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"
	TokenAccent        ColorToken = "accent"
	TokenBackground    ColorToken = "background"
	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"
	TokenStatusPlaying ColorToken = "status.playing"
	TokenStatusError   ColorToken = "status.error"
)

var allTokens = []ColorToken{
	TokenTextPrimary,
	TokenTextSecondary,
	TokenTextMuted,
	TokenAccent,
	TokenBackground,
	TokenBorderDefault,
	TokenBorderFocus,
	TokenStatusPlaying,
	TokenStatusError,
}

// Preset is a named set of colors.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// DefaultPreset is the blood-red-on-night palette dread ships with.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Red on deep violet",
	Colors: map[ColorToken]string{
		TokenTextPrimary:   "#e0e0e0",
		TokenTextSecondary: "#b8a9c0",
		TokenTextMuted:     "#6e5f75",
		TokenAccent:        "#ff6b6b",
		TokenBackground:    "#1a0f1d",
		TokenBorderDefault: "#3d2a42",
		TokenBorderFocus:   "#ff6b6b",
		TokenStatusPlaying: "#8fd694",
		TokenStatusError:   "#ff4d4d",
	},
}

// Presets holds every built-in preset by name.
var Presets = map[string]Preset{
	"default": DefaultPreset,
	"moonlight": {
		Name:        "moonlight",
		Description: "Cold blues for the forest at night",
		Colors: map[ColorToken]string{
			TokenTextPrimary:   "#d8dee9",
			TokenTextSecondary: "#a3b1c6",
			TokenTextMuted:     "#5c6a7e",
			TokenAccent:        "#88c0d0",
			TokenBackground:    "#0f1620",
			TokenBorderDefault: "#2e3b4e",
			TokenBorderFocus:   "#88c0d0",
			TokenStatusPlaying: "#a3be8c",
			TokenStatusError:   "#bf616a",
		},
	},
	"high-contrast": {
		Name:        "high-contrast",
		Description: "Maximum contrast for accessibility",
		Colors: map[ColorToken]string{
			TokenTextPrimary:   "#ffffff",
			TokenTextSecondary: "#ffffff",
			TokenTextMuted:     "#c0c0c0",
			TokenAccent:        "#ffff00",
			TokenBackground:    "#000000",
			TokenBorderDefault: "#ffffff",
			TokenBorderFocus:   "#ffff00",
			TokenStatusPlaying: "#00ff00",
			TokenStatusError:   "#ff0000",
		},
	},
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeConfig selects a preset and optional overrides.
type ThemeConfig struct {
	Preset string
	Mode   string // "light", "dark" or "" for terminal detection
	Colors map[string]string
}

// Theme colors. Set by ApplyTheme.
var (
	TextPrimaryColor   lipgloss.AdaptiveColor
	TextSecondaryColor lipgloss.AdaptiveColor
	TextMutedColor     lipgloss.AdaptiveColor
	AccentColor        lipgloss.AdaptiveColor
	BackgroundColor    lipgloss.AdaptiveColor
	BorderDefaultColor lipgloss.AdaptiveColor
	BorderFocusColor   lipgloss.AdaptiveColor
	StatusPlayingColor lipgloss.AdaptiveColor
	StatusErrorColor   lipgloss.AdaptiveColor
)

func init() {
	if err := ApplyTheme(ThemeConfig{}); err != nil {
		panic(err)
	}
}

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func isValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

func isValidToken(t ColorToken) bool {
	for _, known := range allTokens {
		if t == known {
			return true
		}
	}
	return false
}

// ApplyTheme resolves cfg against the presets and rebuilds every style.
// Nothing changes when cfg is invalid.
func ApplyTheme(cfg ThemeConfig) error {
	name := cfg.Preset
	if name == "" {
		name = DefaultPreset.Name
	}
	preset, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown theme preset %q", cfg.Preset)
	}

	colors := make(map[ColorToken]string, len(allTokens))
	for _, t := range allTokens {
		colors[t] = DefaultPreset.Colors[t]
	}
	for t, c := range preset.Colors {
		colors[t] = c
	}
	for key, c := range cfg.Colors {
		t := ColorToken(key)
		if !isValidToken(t) {
			return fmt.Errorf("unknown color token %q", key)
		}
		if !isValidHexColor(c) {
			return fmt.Errorf("invalid hex color %q for %s", c, key)
		}
		colors[t] = c
	}

	switch cfg.Mode {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}

	adaptive := func(t ColorToken) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: colors[t], Dark: colors[t]}
	}
	TextPrimaryColor = adaptive(TokenTextPrimary)
	TextSecondaryColor = adaptive(TokenTextSecondary)
	TextMutedColor = adaptive(TokenTextMuted)
	AccentColor = adaptive(TokenAccent)
	BackgroundColor = adaptive(TokenBackground)
	BorderDefaultColor = adaptive(TokenBorderDefault)
	BorderFocusColor = adaptive(TokenBorderFocus)
	StatusPlayingColor = adaptive(TokenStatusPlaying)
	StatusErrorColor = adaptive(TokenStatusError)

	rebuildStyles()
	return nil
}
