package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/dread/internal/log"
)

// EnvPrefix prefixes environment overrides, e.g. DREAD_AUDIO_VOLUME.
const EnvPrefix = "DREAD"

// Load reads the config file at path into v, layered over Defaults and
// environment overrides. An empty path searches the default location and
// tolerates a missing file; an explicit path must exist. Returns the
// validated config and the file actually read ("" when none).
func Load(v *viper.Viper, path string) (Config, string, error) {
	SetDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(ExpandHome(path))
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("parsing config: %w", err)
	}
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return Config{}, "", fmt.Errorf("invalid config: %w", err)
	}

	used := v.ConfigFileUsed()
	log.Info(log.CatConfig, "Loaded config", "file", used, "scenes", len(cfg.Scenes))
	return cfg, used, nil
}

// SetDefaults registers Defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("audio.autoplay", d.Audio.Autoplay)
	v.SetDefault("audio.loop", d.Audio.Loop)
	v.SetDefault("audio.load_timeout", d.Audio.LoadTimeout)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.buffer", d.Audio.BufferDuration)
	v.SetDefault("audio.volume", d.Audio.Volume)
	v.SetDefault("audio.sounds_dir", d.Audio.SoundsDir)
	v.SetDefault("audio.base_url", d.Audio.BaseURL)
	v.SetDefault("audio.fetch_timeout", d.Audio.FetchTimeout)
	v.SetDefault("audio.cache_ttl", d.Audio.CacheTTL)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)

	v.SetDefault("startup.scene", d.Startup.Scene)
	v.SetDefault("startup.load", d.Startup.Load)

	v.SetDefault("ui.unknown_title", d.UI.UnknownTitle)
	v.SetDefault("ui.mouse", d.UI.Mouse)

	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)

	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.file", d.Tracing.File)

	v.SetDefault("scenes", d.Scenes)
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (c *Config) expandPaths() {
	c.Audio.SoundsDir = ExpandHome(c.Audio.SoundsDir)
	c.History.Path = ExpandHome(c.History.Path)
	c.Log.File = ExpandHome(c.Log.File)
	c.Tracing.File = ExpandHome(c.Tracing.File)
}
