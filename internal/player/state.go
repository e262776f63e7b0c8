package player

// State is the playback state of the live session.
type State int

const (
	// StateStopped means nothing is playing; with a session the track is
	// loaded but has not been started.
	StateStopped State = iota
	// StateLoading means play was requested and the engine has not yet
	// reported that audio started.
	StateLoading
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// EndReason says why a session ended.
type EndReason string

const (
	ReasonStopped    EndReason = "stopped"
	ReasonSuperseded EndReason = "superseded"
	ReasonDisposed   EndReason = "disposed"
	ReasonLoadFailed EndReason = "load_failed"
	ReasonEnded      EndReason = "ended"
)
