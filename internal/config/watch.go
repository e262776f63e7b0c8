package config

import (
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/zjrosen/dread/internal/log"
)

// reloadDebounce collapses the bursts of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// ThemeWatcher reports theme changes in a config file.
type ThemeWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	current ThemeConfig

	Themes  chan ThemeConfig
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatchTheme watches path for edits. The directory is watched rather than
// the file so that editors that replace the file on save are still seen.
func WatchTheme(path string, current ThemeConfig) (*ThemeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	tw := &ThemeWatcher{
		path:    filepath.Clean(path),
		watcher: w,
		current: current,
		Themes:  make(chan ThemeConfig, 4),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	log.SafeGo("config.watch", tw.run)
	return tw, nil
}

// Close stops watching. Safe to call more than once.
func (w *ThemeWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Themes)
		close(w.Errors)
	})
	return err
}

func (w *ThemeWatcher) run() {
	defer close(w.done)

	var debounce <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(reloadDebounce)

		case <-debounce:
			debounce = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)

		case <-w.closeCh:
			return
		}
	}
}

func (w *ThemeWatcher) reload() {
	theme, err := ReadTheme(w.path)
	if err != nil {
		log.Warn(log.CatConfig, "Ignoring unreadable config edit", "file", w.path, "error", err.Error())
		w.report(err)
		return
	}
	if reflect.DeepEqual(theme, w.current) {
		return
	}
	w.current = theme
	log.Info(log.CatConfig, "Theme changed", "preset", theme.Preset, "mode", theme.Mode)
	select {
	case w.Themes <- theme:
	case <-w.closeCh:
	}
}

func (w *ThemeWatcher) report(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

// ReadTheme reads only the theme section of the config file at path.
func ReadTheme(path string) (ThemeConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return ThemeConfig{}, err
	}
	var theme ThemeConfig
	if err := v.UnmarshalKey("theme", &theme); err != nil {
		return ThemeConfig{}, err
	}
	if err := ValidateTheme(theme); err != nil {
		return ThemeConfig{}, err
	}
	return theme, nil
}
