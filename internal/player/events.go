package player

import "github.com/google/uuid"

// Event is something that happened outside the host loop: an engine callback
// or a timer firing. Events are tagged with the session that caused them;
// events for any other session are dropped.
type Event interface {
	SessionID() uuid.UUID
}

// Dispatcher delivers events back into the loop that owns the Player.
// It is called from engine and timer goroutines.
type Dispatcher func(Event)

// AudioStarted: the engine began or resumed output.
type AudioStarted struct{ Session uuid.UUID }

// AudioPaused: the engine paused output.
type AudioPaused struct{ Session uuid.UUID }

// AudioStopped: the engine stopped output (a true stop, not a pause).
type AudioStopped struct{ Session uuid.UUID }

// LoadFailed: no source could be fetched or decoded.
type LoadFailed struct {
	Session uuid.UUID
	Cause   error
}

// LoadTimeout: the engine did not report started within the load timeout.
type LoadTimeout struct {
	Session uuid.UUID
	Seq     uint64
}

// Tick: one second of playback elapsed.
type Tick struct {
	Session uuid.UUID
	Seq     uint64
}

func (e AudioStarted) SessionID() uuid.UUID { return e.Session }
func (e AudioPaused) SessionID() uuid.UUID  { return e.Session }
func (e AudioStopped) SessionID() uuid.UUID { return e.Session }
func (e LoadFailed) SessionID() uuid.UUID   { return e.Session }
func (e LoadTimeout) SessionID() uuid.UUID  { return e.Session }
func (e Tick) SessionID() uuid.UUID         { return e.Session }
