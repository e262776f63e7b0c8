package scene

import "fmt"

// UnknownSceneError indicates a lookup for an id that is not in the catalog.
type UnknownSceneError struct {
	ID ID
}

// Error implements the error interface.
func (e *UnknownSceneError) Error() string {
	return fmt.Sprintf("unknown scene %q", e.ID)
}
