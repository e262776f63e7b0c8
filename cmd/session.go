package cmd

import (
	"errors"
	"fmt"

	"github.com/zjrosen/dread/internal/audio"
	"github.com/zjrosen/dread/internal/config"
	"github.com/zjrosen/dread/internal/history"
	"github.com/zjrosen/dread/internal/infrastructure/sqlite"
	"github.com/zjrosen/dread/internal/lock"
	"github.com/zjrosen/dread/internal/log"
	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
)

// mailboxSize bounds events waiting for the host loop.
const mailboxSize = 64

// session bundles everything a playing command owns.
type session struct {
	Player   *player.Player
	Mailbox  *player.Mailbox
	recorder *history.Recorder
	db       *sqlite.DB
	instance *lock.Instance
}

// openSession takes the instance lock and wires engine, history and player.
func openSession(c config.Config, mute bool) (*session, error) {
	instance, err := lock.Acquire(config.DataDir())
	if err != nil {
		return nil, err
	}
	s := &session{instance: instance}

	catalog, err := c.Catalog()
	if err != nil {
		s.Close()
		return nil, err
	}
	engine, err := newEngine(c.Audio, mute)
	if err != nil {
		s.Close()
		return nil, err
	}

	var recorder player.Recorder
	if c.History.Enabled {
		s.recorder = history.NewRecorder(s.openHistory(c.History.Path))
		recorder = s.recorder
	}

	s.Mailbox = player.NewMailbox(mailboxSize)
	s.Player, err = player.New(player.Config{
		Catalog:      catalog,
		Engine:       engine,
		Dispatch:     s.Mailbox.Dispatch,
		Recorder:     recorder,
		Autoplay:     c.Audio.Autoplay,
		Loop:         c.Audio.Loop,
		LoadTimeout:  c.Audio.LoadTimeout,
		UnknownTitle: c.UI.UnknownTitle,
		InitialScene: scene.ID(c.Startup.Scene),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return s, nil
}

// openHistory falls back to an in-memory store when the database cannot be
// opened; playback never depends on history.
func (s *session) openHistory(path string) history.Repository {
	db, err := sqlite.NewDB(path)
	if err != nil {
		log.ErrorErr(log.CatDB, "History unavailable, keeping it in memory", err, "path", path)
		return history.NewMemoryRepository()
	}
	s.db = db
	return db.PlaySessions()
}

func newEngine(a config.AudioConfig, mute bool) (audio.Engine, error) {
	if mute {
		log.Info(log.CatAudio, "Muted, using silent engine")
		return audio.NewSilentEngine(), nil
	}
	loader, err := audio.NewLoader(audio.LoaderConfig{
		SoundsDir:    a.SoundsDir,
		BaseURL:      a.BaseURL,
		FetchTimeout: a.FetchTimeout,
		CacheTTL:     a.CacheTTL,
	})
	if err != nil {
		return nil, err
	}
	return audio.NewBeepEngine(audio.BeepConfig{
		SampleRate:     a.SampleRate,
		BufferDuration: a.BufferDuration,
		Volume:         a.Volume,
		Loader:         loader,
	})
}

// Close disposes the player, flushes history and releases the lock.
func (s *session) Close() {
	if s.Player != nil {
		s.Player.Dispose()
	}
	if s.Mailbox != nil {
		s.Mailbox.Close()
	}
	if s.recorder != nil {
		s.recorder.Close()
	}
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.instance != nil {
		errs = append(errs, s.instance.Release())
	}
	if err := errors.Join(errs...); err != nil {
		log.ErrorErr(log.CatCLI, "Failed to close session", err)
	}
}

func sceneID(s string) scene.ID {
	return scene.ID(s)
}
