// Package config provides configuration types and defaults for dread.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/dread/internal/scene"
)

// Config holds all configuration options for dread.
type Config struct {
	Audio   AudioConfig   `mapstructure:"audio"`
	History HistoryConfig `mapstructure:"history"`
	Startup StartupConfig `mapstructure:"startup"`
	UI      UIConfig      `mapstructure:"ui"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Scenes  []SceneConfig `mapstructure:"scenes"`
}

// AudioConfig controls loading and playback.
type AudioConfig struct {
	Autoplay       bool          `mapstructure:"autoplay"`
	Loop           bool          `mapstructure:"loop"`
	LoadTimeout    time.Duration `mapstructure:"load_timeout"`
	SampleRate     int           `mapstructure:"sample_rate"`
	BufferDuration time.Duration `mapstructure:"buffer"`
	Volume         float64       `mapstructure:"volume"` // linear, 0 to 1
	SoundsDir      string        `mapstructure:"sounds_dir"`
	BaseURL        string        `mapstructure:"base_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// HistoryConfig controls the play history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// StartupConfig chooses what happens when the player opens.
type StartupConfig struct {
	// Scene is shown as current before anything is selected.
	Scene string `mapstructure:"scene"`
	// Load selects Scene immediately instead of waiting for the user.
	Load bool `mapstructure:"load"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	UnknownTitle string `mapstructure:"unknown_title"`
	Mouse        bool   `mapstructure:"mouse"`
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base. Empty means "default".
	Preset string `mapstructure:"preset"`
	// Mode forces "light" or "dark". Empty uses terminal detection.
	Mode string `mapstructure:"mode"`
	// Colors overrides individual tokens, e.g. "accent": "#ff6b6b".
	Colors map[string]string `mapstructure:"colors"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Debug bool   `mapstructure:"debug"`
}

// TracingConfig selects a span exporter.
type TracingConfig struct {
	// Exporter is "none", "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`
	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `mapstructure:"endpoint"`
	// File receives spans from the stdout exporter.
	File string `mapstructure:"file"`
}

// SceneConfig defines one selectable scene.
type SceneConfig struct {
	ID         string   `mapstructure:"id" yaml:"id"`
	Name       string   `mapstructure:"name" yaml:"name"`
	Sources    []string `mapstructure:"sources" yaml:"sources"`
	Title      string   `mapstructure:"title" yaml:"title"`
	Background string   `mapstructure:"background" yaml:"background,omitempty"`
}

// Tracing exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// DefaultScenes returns the three built-in scenes.
func DefaultScenes() []SceneConfig {
	return SceneConfigs(scene.Defaults())
}

// SceneConfigs converts scenes back to their config form.
func SceneConfigs(scenes []scene.Scene) []SceneConfig {
	out := make([]SceneConfig, 0, len(scenes))
	for _, sc := range scenes {
		out = append(out, SceneConfig{
			ID:         string(sc.ID()),
			Name:       sc.Name(),
			Sources:    sc.Sources(),
			Title:      sc.Title(),
			Background: sc.Background(),
		})
	}
	return out
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Audio: AudioConfig{
			Autoplay:       true,
			Loop:           true,
			LoadTimeout:    15 * time.Second,
			SampleRate:     44100,
			BufferDuration: 100 * time.Millisecond,
			Volume:         1,
			SoundsDir:      filepath.Join(DataDir(), "sounds"),
			FetchTimeout:   30 * time.Second,
			CacheTTL:       time.Hour,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(DataDir(), "dread.db"),
		},
		Startup: StartupConfig{
			Scene: string(scene.Sea),
		},
		UI: UIConfig{
			UnknownTitle: "未知曲目",
			Mouse:        true,
		},
		Tracing: TracingConfig{
			Exporter: ExporterNone,
		},
		Scenes: DefaultScenes(),
	}
}

// DataDir is where dread keeps its database, lock file and sounds.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dread"
	}
	return filepath.Join(home, ".dread")
}

// DefaultConfigPath returns ~/.config/dread/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "dread.yaml")
	}
	return filepath.Join(dir, "dread", "config.yaml")
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := ValidateAudio(c.Audio); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	if err := ValidateScenes(c.Scenes); err != nil {
		return err
	}
	if c.Startup.Scene != "" && len(c.Scenes) > 0 {
		for _, sc := range c.Scenes {
			if sc.ID == c.Startup.Scene {
				return nil
			}
		}
		return fmt.Errorf("startup.scene %q is not a configured scene", c.Startup.Scene)
	}
	return nil
}

// ValidateAudio checks the audio section.
func ValidateAudio(a AudioConfig) error {
	if a.Volume < 0 || a.Volume > 1 {
		return fmt.Errorf("audio.volume must be between 0 and 1, got %g", a.Volume)
	}
	if a.SampleRate < 0 {
		return fmt.Errorf("audio.sample_rate must not be negative, got %d", a.SampleRate)
	}
	if a.LoadTimeout < 0 {
		return fmt.Errorf("audio.load_timeout must not be negative, got %s", a.LoadTimeout)
	}
	if a.FetchTimeout < 0 {
		return fmt.Errorf("audio.fetch_timeout must not be negative, got %s", a.FetchTimeout)
	}
	return nil
}

// ValidateTracing checks the tracing section.
func ValidateTracing(t TracingConfig) error {
	switch t.Exporter {
	case "", ExporterNone, ExporterStdout:
		return nil
	case ExporterOTLP:
		if t.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required for the %s exporter", ExporterOTLP)
		}
		return nil
	default:
		return fmt.Errorf("tracing.exporter %q: must be one of none, stdout, otlp", t.Exporter)
	}
}

// ValidateTheme checks the theme mode. Presets and colors are checked when
// the theme is applied.
func ValidateTheme(t ThemeConfig) error {
	switch t.Mode {
	case "", "light", "dark":
		return nil
	default:
		return fmt.Errorf("theme.mode %q: must be light, dark or empty", t.Mode)
	}
}

// ValidateScenes checks scene configuration for errors.
// Returns nil if scenes are valid or empty (will use defaults).
func ValidateScenes(scenes []SceneConfig) error {
	if len(scenes) == 0 {
		return nil
	}
	_, err := buildCatalog(scenes)
	return err
}

// Catalog builds the scene catalog, falling back to the defaults when no
// scenes are configured.
func (c Config) Catalog() (*scene.Catalog, error) {
	if len(c.Scenes) == 0 {
		return scene.NewCatalog(scene.Defaults())
	}
	return buildCatalog(c.Scenes)
}

func buildCatalog(scenes []SceneConfig) (*scene.Catalog, error) {
	list := make([]scene.Scene, 0, len(scenes))
	for _, sc := range scenes {
		list = append(list, scene.New(scene.ID(sc.ID), sc.Name, sc.Sources, sc.Title, sc.Background))
	}
	catalog, err := scene.NewCatalog(list)
	if err != nil {
		return nil, fmt.Errorf("scenes: %w", err)
	}
	return catalog, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# dread configuration

audio:
  autoplay: true          # start playing as soon as a scene is selected
  loop: true              # loop the scene track
  load_timeout: 15s       # give up on a scene that never starts
  sample_rate: 44100
  buffer: 100ms           # speaker buffer; larger is smoother, slower to react
  volume: 1.0             # 0 mutes, 1 is full volume
  # sounds_dir: ~/.dread/sounds   # relative sources are read from here
  # base_url: https://example.com/ambiance/   # or fetched from here
  fetch_timeout: 30s
  cache_ttl: 1h

history:
  enabled: true
  # path: ~/.dread/dread.db

startup:
  scene: sea              # shown as current when dread opens
  load: false             # select it right away

ui:
  unknown_title: "未知曲目"  # shown before anything plays
  mouse: true

# Theme configuration
theme:
  # preset: default       # default, moonlight, high-contrast
  # mode: dark            # force light or dark
  # colors:
  #   accent: "#ff6b6b"
  #   background: "#1a0f1d"

log:
  # file: ~/.dread/dread.log
  debug: false

tracing:
  exporter: none          # none, stdout or otlp
  # endpoint: localhost:4317
  # file: ~/.dread/spans.json

# Scenes, in button order. Keys 1-9 select them.
scenes:
  - id: sea
    name: 海边
    sources: [sea-horror.mp3]
    title: 海边恐怖音乐
  - id: camp
    name: 营地
    sources: [camp-horror.mp3]
    title: 营地恐怖音乐
  - id: forest
    name: 森林
    sources: [forest-horror.mp3]
    title: 森林恐怖音乐
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
