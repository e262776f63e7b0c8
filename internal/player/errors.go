package player

import (
	"errors"
	"fmt"

	"github.com/zjrosen/dread/internal/scene"
)

// ErrDisposed is returned by SelectScene after Dispose.
var ErrDisposed = errors.New("player disposed")

// ErrLoadTimeout is the cause of a LoadFailedError when the engine never
// reported that audio started.
var ErrLoadTimeout = errors.New("audio load timed out")

// LoadFailedError reports that a scene's audio could not be loaded.
// The session it belonged to has been discarded.
type LoadFailedError struct {
	Scene scene.ID
	Cause error
}

// Error implements the error interface.
func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("loading scene %q: %v", e.Scene, e.Cause)
}

// Unwrap returns the cause.
func (e *LoadFailedError) Unwrap() error {
	return e.Cause
}
