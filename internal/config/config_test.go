package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dread/internal/scene"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.True(t, cfg.Audio.Autoplay)
	assert.True(t, cfg.Audio.Loop)
	assert.Equal(t, 15*time.Second, cfg.Audio.LoadTimeout)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, "sea", cfg.Startup.Scene)
	assert.Equal(t, "未知曲目", cfg.UI.UnknownTitle)
	assert.Equal(t, ExporterNone, cfg.Tracing.Exporter)
	require.Len(t, cfg.Scenes, 3)
	assert.Equal(t, "海边", cfg.Scenes[0].Name)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, used, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, Defaults().Audio.LoadTimeout, cfg.Audio.LoadTimeout)
	assert.Len(t, cfg.Scenes, 3)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
audio:
  autoplay: false
  load_timeout: 3s
  volume: 0.25
startup:
  scene: attic
ui:
  unknown_title: "Nothing yet"
scenes:
  - id: attic
    name: Attic
    sources: [attic.ogg, https://cdn.example.com/attic.mp3]
    title: Creaking Beams
`)

	cfg, used, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.False(t, cfg.Audio.Autoplay)
	assert.True(t, cfg.Audio.Loop, "unset keys keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Audio.LoadTimeout)
	assert.InDelta(t, 0.25, cfg.Audio.Volume, 1e-9)
	assert.Equal(t, "Nothing yet", cfg.UI.UnknownTitle)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())
	sc, ok := catalog.Get("attic")
	require.True(t, ok)
	assert.Equal(t, []string{"attic.ogg", "https://cdn.example.com/attic.mp3"}, sc.Sources())
	assert.Equal(t, "Creaking Beams", sc.Title())
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "audio:\n  volume: 0.5\n")
	t.Setenv("DREAD_AUDIO_VOLUME", "0.75")

	cfg, _, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, cfg.Audio.Volume, 1e-9)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, "history:\n  path: ~/data/history.db\n")

	cfg, _, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "history.db"), cfg.History.Path)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "audio:\n  volume: 3\n")

	_, _, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio.volume")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative volume", func(c *Config) { c.Audio.Volume = -0.1 }, "audio.volume"},
		{"negative sample rate", func(c *Config) { c.Audio.SampleRate = -1 }, "audio.sample_rate"},
		{"negative load timeout", func(c *Config) { c.Audio.LoadTimeout = -time.Second }, "audio.load_timeout"},
		{"negative fetch timeout", func(c *Config) { c.Audio.FetchTimeout = -time.Second }, "audio.fetch_timeout"},
		{"unknown exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, "tracing.exporter"},
		{"otlp without endpoint", func(c *Config) { c.Tracing.Exporter = ExporterOTLP }, "tracing.endpoint"},
		{"otlp with endpoint", func(c *Config) {
			c.Tracing.Exporter = ExporterOTLP
			c.Tracing.Endpoint = "localhost:4317"
		}, ""},
		{"bad theme mode", func(c *Config) { c.Theme.Mode = "sepia" }, "theme.mode"},
		{"unknown startup scene", func(c *Config) { c.Startup.Scene = "rain" }, "startup.scene"},
		{"empty startup scene", func(c *Config) { c.Startup.Scene = "" }, ""},
		{"duplicate scene", func(c *Config) { c.Scenes = append(c.Scenes, c.Scenes[0]) }, "scenes"},
		{"scene without sources", func(c *Config) { c.Scenes[1].Sources = nil }, "scenes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalog_EmptyScenesFallsBackToDefaults(t *testing.T) {
	cfg := Config{}
	catalog, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.Len())
	_, ok := catalog.Get(scene.Forest)
	assert.True(t, ok)
}

func TestDefaultConfigTemplate_LoadsCleanly(t *testing.T) {
	path := writeConfig(t, DefaultConfigTemplate())

	cfg, _, err := Load(viper.New(), path)
	require.NoError(t, err)

	want := Defaults()
	assert.Equal(t, want.Scenes, cfg.Scenes)
	assert.Equal(t, want.Audio.LoadTimeout, cfg.Audio.LoadTimeout)
	assert.Equal(t, want.Startup.Scene, cfg.Startup.Scene)
	assert.Equal(t, want.UI.UnknownTitle, cfg.UI.UnknownTitle)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/x/y", filepath.Join(home, "x", "y")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~user/x", "~user/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}
