// Package audio is the playback engine behind the scene player.
//
// An Engine creates one Handle per scene selection. Handles load lazily on the
// first Play and report state changes through the callbacks in Options. The
// callbacks run on engine goroutines, never on the caller's goroutine, so
// hosts must forward them into their own event loop.
package audio

import (
	"errors"
	"sync"

	"github.com/zjrosen/dread/internal/log"
)

// Options configures a Handle.
type Options struct {
	// Loop restarts the track from the beginning when it ends.
	Loop bool

	// OnPlay fires when audio starts or resumes.
	OnPlay func()
	// OnPause fires when playing audio is paused.
	OnPause func()
	// OnStop fires on an explicit Stop or when a non-looping track ends.
	OnStop func()
	// OnLoadError fires when no source could be fetched and decoded.
	OnLoadError func(error)
}

// Handle controls one loaded track.
// After Unload no callback fires and every method is a no-op.
type Handle interface {
	Play()
	Pause()
	Stop()
	Unload()
}

// Engine creates handles.
type Engine interface {
	Create(sources []string, opts Options) (Handle, error)
}

// ErrNoSources is returned by Create when the source list is empty.
var ErrNoSources = errors.New("no audio sources")

func (o Options) firePlay() {
	if o.OnPlay != nil {
		o.OnPlay()
	}
}

func (o Options) firePause() {
	if o.OnPause != nil {
		o.OnPause()
	}
}

func (o Options) fireStop() {
	if o.OnStop != nil {
		o.OnStop()
	}
}

func (o Options) fireLoadError(err error) {
	if o.OnLoadError != nil {
		o.OnLoadError(err)
	}
}

// callbackQueue runs callbacks off the caller's goroutine, one at a time, in
// the order they were queued.
type callbackQueue struct {
	name string

	mu       sync.Mutex
	pending  []func()
	draining bool
	closed   bool
}

func (q *callbackQueue) push(cb func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, cb)
	if q.draining {
		return
	}
	q.draining = true
	log.SafeGo(q.name, q.drain)
}

func (q *callbackQueue) drain() {
	for {
		q.mu.Lock()
		if q.closed || len(q.pending) == 0 {
			q.pending = nil
			q.draining = false
			q.mu.Unlock()
			return
		}
		cb := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		cb()
	}
}

// close drops queued callbacks and rejects new ones. A callback already
// running finishes.
func (q *callbackQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	q.mu.Unlock()
}
