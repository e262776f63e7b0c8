package history

import "fmt"

// InvalidLimitError is returned by ListRecent for a limit below one.
type InvalidLimitError struct {
	Limit int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid history limit %d: must be at least 1", e.Limit)
}

// DuplicateSessionError is returned when a session is saved twice.
type DuplicateSessionError struct {
	SessionID string
}

func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("session %s already recorded", e.SessionID)
}
