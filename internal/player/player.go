// Package player implements the scene player: the state machine that binds
// one scene at a time to one audio handle and counts elapsed play time.
//
// A Player is not safe for concurrent use. Every method must be called from
// the single loop that owns it (the bubbletea update loop, or the headless
// play loop). Engine callbacks and timers never touch the Player directly;
// they become Events posted through the Dispatcher and come back in through
// Handle.
package player

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/dread/internal/audio"
	"github.com/zjrosen/dread/internal/log"
	"github.com/zjrosen/dread/internal/scene"
)

// DefaultUnknownTitle is shown when nothing has started playing.
const DefaultUnknownTitle = "未知曲目"

// SessionRecord describes a finished playback session.
type SessionRecord struct {
	SessionID      uuid.UUID
	SceneID        scene.ID
	StartedAt      time.Time
	EndedAt        time.Time
	ElapsedSeconds int
	Reason         EndReason
}

// Recorder receives a record for every session that ends.
type Recorder interface {
	Record(rec SessionRecord)
}

// Config wires a Player to its collaborators.
type Config struct {
	Catalog  *scene.Catalog
	Engine   audio.Engine
	Dispatch Dispatcher

	// Clock defaults to the real clock.
	Clock Clock
	// Recorder is optional.
	Recorder Recorder

	// Autoplay starts playback as soon as a scene is selected.
	Autoplay bool
	// Loop is passed to the engine for every handle.
	Loop bool
	// LoadTimeout turns a load that never starts into a LoadFailedError.
	// Zero disables it.
	LoadTimeout time.Duration
	// TickInterval defaults to one second.
	TickInterval time.Duration
	// UnknownTitle defaults to DefaultUnknownTitle.
	UnknownTitle string
	// InitialScene is shown as current before anything is selected.
	InitialScene scene.ID
}

type session struct {
	id        uuid.UUID
	scene     scene.Scene
	handle    audio.Handle
	state     State
	elapsed   int
	started   bool
	createdAt time.Time

	tick      Timer
	tickSeq   uint64
	tickBase  time.Time
	tickCount int
	loadTimer Timer
	loadSeq   uint64
}

// Player is the scene player.
type Player struct {
	catalog  *scene.Catalog
	engine   audio.Engine
	dispatch Dispatcher
	clock    Clock
	recorder Recorder

	autoplay     bool
	loop         bool
	loadTimeout  time.Duration
	tickInterval time.Duration
	unknownTitle string

	current  scene.Scene
	session  *session
	lastErr  error
	disposed bool
}

// New creates a Player with no session.
func New(cfg Config) (*Player, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("player requires a scene catalog")
	}
	if cfg.Engine == nil {
		return nil, errors.New("player requires an audio engine")
	}
	if cfg.Dispatch == nil {
		return nil, errors.New("player requires a dispatcher")
	}

	p := &Player{
		catalog:      cfg.Catalog,
		engine:       cfg.Engine,
		dispatch:     cfg.Dispatch,
		clock:        cfg.Clock,
		recorder:     cfg.Recorder,
		autoplay:     cfg.Autoplay,
		loop:         cfg.Loop,
		loadTimeout:  cfg.LoadTimeout,
		tickInterval: cfg.TickInterval,
		unknownTitle: cfg.UnknownTitle,
	}
	if p.clock == nil {
		p.clock = RealClock()
	}
	if p.tickInterval <= 0 {
		p.tickInterval = time.Second
	}
	if p.unknownTitle == "" {
		p.unknownTitle = DefaultUnknownTitle
	}
	if cfg.InitialScene != "" {
		sc, ok := p.catalog.Get(cfg.InitialScene)
		if !ok {
			return nil, &scene.UnknownSceneError{ID: cfg.InitialScene}
		}
		p.current = sc
	}
	return p, nil
}

// SelectScene releases the current session, if any, and starts a new one
// bound to id. Selecting the current scene again restarts it from zero.
func (p *Player) SelectScene(id scene.ID) error {
	if p.disposed {
		return ErrDisposed
	}
	sc, ok := p.catalog.Get(id)
	if !ok {
		return &scene.UnknownSceneError{ID: id}
	}

	p.endSession(ReasonSuperseded)
	p.current = sc
	p.lastErr = nil

	s := &session{
		id:        uuid.New(),
		scene:     sc,
		state:     StateStopped,
		createdAt: p.clock.Now(),
	}
	handle, err := p.engine.Create(sc.Sources(), p.handleOptions(s.id))
	if err != nil {
		p.lastErr = &LoadFailedError{Scene: sc.ID(), Cause: err}
		log.ErrorErr(log.CatPlayer, "Failed to create audio handle", err, "scene", string(sc.ID()))
		return nil
	}
	s.handle = handle
	p.session = s
	log.Info(log.CatPlayer, "Scene selected", "scene", string(sc.ID()), "session", s.id.String(), "autoplay", p.autoplay)

	if p.autoplay {
		p.play(s)
	}
	return nil
}

// TogglePlayback pauses a playing session or resumes a paused or stopped one.
// Without a session it does nothing.
func (p *Player) TogglePlayback() {
	s := p.session
	if p.disposed || s == nil {
		return
	}

	switch s.state {
	case StatePlaying:
		s.handle.Pause()
		s.state = StatePaused
		p.stopTick(s)
	case StateLoading:
		s.handle.Pause()
		s.state = StatePaused
		p.disarmLoadTimeout(s)
	case StatePaused, StateStopped:
		p.play(s)
	}
	log.Debug(log.CatPlayer, "Playback toggled", "session", s.id.String(), "state", s.state.String(), "elapsed", s.elapsed)
}

// Stop ends the current session and resets elapsed time.
func (p *Player) Stop() {
	if p.disposed {
		return
	}
	p.endSession(ReasonStopped)
}

// Dispose releases the audio handle and cancels every timer. The Player is
// unusable afterwards. Safe to call more than once.
func (p *Player) Dispose() {
	if p.disposed {
		return
	}
	p.endSession(ReasonDisposed)
	p.disposed = true
	log.Debug(log.CatPlayer, "Player disposed")
}

// Handle applies an event posted through the Dispatcher.
func (p *Player) Handle(ev Event) {
	s := p.session
	if p.disposed || s == nil || ev.SessionID() != s.id {
		log.Debug(log.CatPlayer, "Dropping stale event", "event", eventName(ev), "session", ev.SessionID().String())
		return
	}

	switch e := ev.(type) {
	case AudioStarted:
		s.started = true
		p.disarmLoadTimeout(s)
		if s.state != StatePlaying {
			s.state = StatePlaying
			p.startTick(s)
		}

	case AudioPaused:
		if s.state == StatePlaying || s.state == StateLoading {
			s.state = StatePaused
		}
		p.stopTick(s)
		p.disarmLoadTimeout(s)

	case AudioStopped:
		p.endSession(ReasonEnded)

	case LoadFailed:
		p.fail(s, e.Cause)

	case LoadTimeout:
		if s.state == StateLoading && e.Seq == s.loadSeq {
			p.fail(s, ErrLoadTimeout)
		}

	case Tick:
		if s.state != StatePlaying || e.Seq != s.tickSeq {
			return
		}
		s.elapsed++
		p.scheduleTick(s)
	}
}

// Snapshot is a copy of everything the presentation layer renders.
type Snapshot struct {
	Scenes     []scene.Scene
	Current    scene.Scene
	HasSession bool
	SessionID  uuid.UUID
	State      State
	Elapsed    int
	Title      string
	Err        error
}

// Playing reports whether audio is currently playing.
func (s Snapshot) Playing() bool {
	return s.State == StatePlaying
}

// Snapshot returns the current state.
func (p *Player) Snapshot() Snapshot {
	snap := Snapshot{
		Scenes:  p.catalog.All(),
		Current: p.current,
		State:   StateStopped,
		Title:   p.unknownTitle,
		Err:     p.lastErr,
	}
	if s := p.session; s != nil {
		snap.HasSession = true
		snap.SessionID = s.id
		snap.State = s.state
		snap.Elapsed = s.elapsed
		if s.started && (s.state == StatePlaying || s.state == StatePaused) {
			snap.Title = s.scene.Title()
		}
	}
	return snap
}

// Catalog returns the scene catalog.
func (p *Player) Catalog() *scene.Catalog {
	return p.catalog
}

func (p *Player) handleOptions(id uuid.UUID) audio.Options {
	return audio.Options{
		Loop:        p.loop,
		OnPlay:      func() { p.dispatch(AudioStarted{Session: id}) },
		OnPause:     func() { p.dispatch(AudioPaused{Session: id}) },
		OnStop:      func() { p.dispatch(AudioStopped{Session: id}) },
		OnLoadError: func(err error) { p.dispatch(LoadFailed{Session: id, Cause: err}) },
	}
}

func (p *Player) play(s *session) {
	s.handle.Play()
	if s.started {
		s.state = StatePlaying
		p.startTick(s)
		return
	}
	s.state = StateLoading
	p.armLoadTimeout(s)
}

func (p *Player) fail(s *session, cause error) {
	p.lastErr = &LoadFailedError{Scene: s.scene.ID(), Cause: cause}
	log.ErrorErr(log.CatPlayer, "Scene failed to load", cause, "scene", string(s.scene.ID()), "session", s.id.String())
	p.endSession(ReasonLoadFailed)
}

// endSession stops and releases the live session and records it.
func (p *Player) endSession(reason EndReason) {
	s := p.session
	if s == nil {
		return
	}
	p.session = nil

	p.stopTick(s)
	p.disarmLoadTimeout(s)
	s.handle.Stop()
	s.handle.Unload()

	log.Info(log.CatPlayer, "Session ended", "scene", string(s.scene.ID()), "session", s.id.String(),
		"reason", string(reason), "elapsed", s.elapsed)

	if p.recorder != nil {
		p.recorder.Record(SessionRecord{
			SessionID:      s.id,
			SceneID:        s.scene.ID(),
			StartedAt:      s.createdAt,
			EndedAt:        p.clock.Now(),
			ElapsedSeconds: s.elapsed,
			Reason:         reason,
		})
	}
}

// startTick replaces any running tick source with a fresh one anchored at
// the current time.
func (p *Player) startTick(s *session) {
	p.stopTick(s)
	s.tickBase = p.clock.Now()
	s.tickCount = 0
	p.scheduleTick(s)
}

// scheduleTick arms the next tick at tickBase + n*interval, so time spent
// delivering earlier ticks does not accumulate.
func (p *Player) scheduleTick(s *session) {
	s.tickSeq++
	s.tickCount++
	deadline := s.tickBase.Add(time.Duration(s.tickCount) * p.tickInterval)
	delay := max(deadline.Sub(p.clock.Now()), 0)
	id, seq := s.id, s.tickSeq
	s.tick = p.clock.AfterFunc(delay, func() {
		p.dispatch(Tick{Session: id, Seq: seq})
	})
}

// stopTick cancels the tick source. Bumping the sequence also invalidates a
// tick that already fired but has not been handled yet.
func (p *Player) stopTick(s *session) {
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	s.tickSeq++
}

func (p *Player) armLoadTimeout(s *session) {
	p.disarmLoadTimeout(s)
	if p.loadTimeout <= 0 {
		return
	}
	s.loadSeq++
	id, seq := s.id, s.loadSeq
	s.loadTimer = p.clock.AfterFunc(p.loadTimeout, func() {
		p.dispatch(LoadTimeout{Session: id, Seq: seq})
	})
}

func (p *Player) disarmLoadTimeout(s *session) {
	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
	s.loadSeq++
}

func eventName(ev Event) string {
	switch ev.(type) {
	case AudioStarted:
		return "audio_started"
	case AudioPaused:
		return "audio_paused"
	case AudioStopped:
		return "audio_stopped"
	case LoadFailed:
		return "load_failed"
	case LoadTimeout:
		return "load_timeout"
	case Tick:
		return "tick"
	default:
		return "unknown"
	}
}
