// Package audiotest provides a scriptable audio engine for tests.
package audiotest

import (
	"sync"

	"github.com/zjrosen/dread/internal/audio"
)

// Engine records every handle it creates. Callbacks never fire on their own;
// tests trigger them through the handle helpers.
type Engine struct {
	mu        sync.Mutex
	handles   []*Handle
	CreateErr error
}

// NewEngine creates a fake engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Create implements audio.Engine.
func (e *Engine) Create(sources []string, opts audio.Options) (audio.Handle, error) {
	if len(sources) == 0 {
		return nil, audio.ErrNoSources
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.CreateErr != nil {
		return nil, e.CreateErr
	}
	h := &Handle{Sources: append([]string(nil), sources...), opts: opts}
	e.handles = append(e.handles, h)
	return h, nil
}

// Handles returns every handle created so far, oldest first.
func (e *Engine) Handles() []*Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Handle(nil), e.handles...)
}

// Last returns the most recent handle, or nil.
func (e *Engine) Last() *Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.handles) == 0 {
		return nil
	}
	return e.handles[len(e.handles)-1]
}

// Live returns handles that have not been unloaded.
func (e *Engine) Live() []*Handle {
	var live []*Handle
	for _, h := range e.Handles() {
		if !h.Unloaded() {
			live = append(live, h)
		}
	}
	return live
}

// Handle counts calls and lets tests play the engine's part.
type Handle struct {
	Sources []string
	opts    audio.Options

	mu       sync.Mutex
	plays    int
	pauses   int
	stops    int
	unloaded bool
}

func (h *Handle) Play()  { h.mu.Lock(); h.plays++; h.mu.Unlock() }
func (h *Handle) Pause() { h.mu.Lock(); h.pauses++; h.mu.Unlock() }
func (h *Handle) Stop()  { h.mu.Lock(); h.stops++; h.mu.Unlock() }
func (h *Handle) Unload() {
	h.mu.Lock()
	h.unloaded = true
	h.mu.Unlock()
}

// Calls returns play, pause and stop counts.
func (h *Handle) Calls() (plays, pauses, stops int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plays, h.pauses, h.stops
}

// Unloaded reports whether Unload was called.
func (h *Handle) Unloaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unloaded
}

// Loop reports the loop option the handle was created with.
func (h *Handle) Loop() bool { return h.opts.Loop }

// Started fires OnPlay, even after Unload, so callers can check that
// stale callbacks are ignored.
func (h *Handle) Started() {
	if h.opts.OnPlay != nil {
		h.opts.OnPlay()
	}
}

// Paused fires OnPause.
func (h *Handle) Paused() {
	if h.opts.OnPause != nil {
		h.opts.OnPause()
	}
}

// Stopped fires OnStop.
func (h *Handle) Stopped() {
	if h.opts.OnStop != nil {
		h.opts.OnStop()
	}
}

// Fail fires OnLoadError.
func (h *Handle) Fail(err error) {
	if h.opts.OnLoadError != nil {
		h.opts.OnLoadError(err)
	}
}
