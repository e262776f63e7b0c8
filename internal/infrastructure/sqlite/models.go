package sqlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/dread/internal/history"
	"github.com/zjrosen/dread/internal/player"
	"github.com/zjrosen/dread/internal/scene"
)

// playSessionModel is a play_sessions row. Times are Unix seconds.
type playSessionModel struct {
	ID             int64
	GUID           string
	SceneID        string
	StartedAt      int64
	EndedAt        int64
	ElapsedSeconds int64
	EndReason      string
}

func toPlaySessionModel(e *history.Entry) *playSessionModel {
	return &playSessionModel{
		ID:             e.ID,
		GUID:           e.SessionID.String(),
		SceneID:        string(e.SceneID),
		StartedAt:      e.StartedAt.Unix(),
		EndedAt:        e.EndedAt.Unix(),
		ElapsedSeconds: int64(e.Elapsed / time.Second),
		EndReason:      string(e.Reason),
	}
}

func (m *playSessionModel) toEntry() (*history.Entry, error) {
	id, err := uuid.Parse(m.GUID)
	if err != nil {
		return nil, err
	}
	return &history.Entry{
		ID:        m.ID,
		SessionID: id,
		SceneID:   scene.ID(m.SceneID),
		StartedAt: time.Unix(m.StartedAt, 0),
		EndedAt:   time.Unix(m.EndedAt, 0),
		Elapsed:   time.Duration(m.ElapsedSeconds) * time.Second,
		Reason:    player.EndReason(m.EndReason),
	}, nil
}
