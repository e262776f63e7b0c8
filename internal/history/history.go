// Package history keeps a record of finished playback sessions.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
)

// Entry is one finished session.
type Entry struct {
	ID        int64 // assigned by the repository on Save
	SessionID uuid.UUID
	SceneID   scene.ID
	StartedAt time.Time
	EndedAt   time.Time
	Elapsed   time.Duration
	Reason    player.EndReason
}

// FromRecord converts a player session record.
func FromRecord(rec player.SessionRecord) *Entry {
	return &Entry{
		SessionID: rec.SessionID,
		SceneID:   rec.SceneID,
		StartedAt: rec.StartedAt,
		EndedAt:   rec.EndedAt,
		Elapsed:   time.Duration(rec.ElapsedSeconds) * time.Second,
		Reason:    rec.Reason,
	}
}

// SceneTotal aggregates the entries of one scene.
type SceneTotal struct {
	SceneID  scene.ID
	Sessions int
	Elapsed  time.Duration
	LastPlay time.Time
}

// Repository stores entries.
type Repository interface {
	// Save inserts e and sets its ID.
	Save(e *Entry) error
	// ListRecent returns up to limit entries, newest first.
	ListRecent(limit int) ([]*Entry, error)
	// TotalsByScene returns one total per scene, most played first.
	TotalsByScene() ([]SceneTotal, error)
	// Clear deletes every entry and returns how many were removed.
	Clear() (int64, error)
}
