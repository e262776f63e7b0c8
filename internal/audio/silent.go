package audio

import "sync"

// SilentEngine satisfies Engine without producing sound. It backs --mute and
// hosts without an audio device; playback state and elapsed time still work.
type SilentEngine struct{}

// NewSilentEngine creates a SilentEngine.
func NewSilentEngine() *SilentEngine {
	return &SilentEngine{}
}

// Create returns a handle that reports state changes immediately.
func (e *SilentEngine) Create(sources []string, opts Options) (Handle, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return &silentHandle{opts: opts, callbacks: &callbackQueue{name: "audio.silent.callback"}}, nil
}

type silentHandle struct {
	opts      Options
	callbacks *callbackQueue

	mu       sync.Mutex
	playing  bool
	unloaded bool
}

func (h *silentHandle) Play() {
	h.transition(func() (func(), bool) {
		if h.playing {
			return nil, false
		}
		h.playing = true
		return h.opts.firePlay, true
	})
}

func (h *silentHandle) Pause() {
	h.transition(func() (func(), bool) {
		if !h.playing {
			return nil, false
		}
		h.playing = false
		return h.opts.firePause, true
	})
}

func (h *silentHandle) Stop() {
	h.transition(func() (func(), bool) {
		h.playing = false
		return h.opts.fireStop, true
	})
}

func (h *silentHandle) Unload() {
	h.mu.Lock()
	h.callbacks.close()
	h.unloaded = true
	h.playing = false
	h.mu.Unlock()
}

func (h *silentHandle) transition(apply func() (func(), bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.unloaded {
		return
	}
	cb, ok := apply()
	if !ok {
		return
	}
	h.callbacks.push(cb)
}
