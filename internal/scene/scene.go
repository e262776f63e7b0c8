// Package scene defines the preset ambiance scenes and the catalog that holds them.
package scene

import (
	"fmt"
	"regexp"
	"strings"
)

// ID is the stable identifier of a scene. Presentation lookups key on it,
// never on the localized display name.
type ID string

// Scene is an immutable preset pairing an audio source with display metadata.
type Scene struct {
	id         ID
	name       string
	sources    []string
	title      string
	background string
}

// New constructs a Scene. sources are tried in order by the audio engine.
func New(id ID, name string, sources []string, title, background string) Scene {
	return Scene{
		id:         id,
		name:       name,
		sources:    append([]string(nil), sources...),
		title:      title,
		background: background,
	}
}

// ID returns the scene identifier.
func (s Scene) ID() ID { return s.id }

// Name returns the display name.
func (s Scene) Name() string { return s.name }

// Sources returns a copy of the audio source URIs.
func (s Scene) Sources() []string { return append([]string(nil), s.sources...) }

// Title returns the display title shown while the scene plays.
func (s Scene) Title() string { return s.title }

// Background returns the optional background image URI.
func (s Scene) Background() string { return s.background }

// IsZero reports whether s is the zero Scene.
func (s Scene) IsZero() bool { return s.id == "" }

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks that the scene is playable.
func (s Scene) Validate() error {
	if !idPattern.MatchString(string(s.id)) {
		return fmt.Errorf("invalid scene id %q: use lowercase letters, digits, '-' or '_'", s.id)
	}
	if strings.TrimSpace(s.name) == "" {
		return fmt.Errorf("scene %s: name is required", s.id)
	}
	if len(s.sources) == 0 {
		return fmt.Errorf("scene %s: at least one source is required", s.id)
	}
	for i, src := range s.sources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("scene %s: source %d is empty", s.id, i)
		}
	}
	return nil
}
