package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ncruces/go-sqlite3"

	"github.com/zjrosen/dread/internal/history"
	"github.com/zjrosen/dread/internal/scene"
)

type playSessionRepository struct {
	db *sql.DB
}

var _ history.Repository = (*playSessionRepository)(nil)

// Save inserts a finished session and sets e.ID.
func (r *playSessionRepository) Save(e *history.Entry) error {
	m := toPlaySessionModel(e)
	result, err := r.db.Exec(
		`INSERT INTO play_sessions (guid, scene_id, started_at, ended_at, elapsed_seconds, end_reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.GUID, m.SceneID, m.StartedAt, m.EndedAt, m.ElapsedSeconds, m.EndReason,
	)
	if errors.Is(err, sqlite3.CONSTRAINT_UNIQUE) {
		return &history.DuplicateSessionError{SessionID: m.GUID}
	}
	if err != nil {
		return fmt.Errorf("failed to insert play session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// ListRecent returns the newest sessions first.
func (r *playSessionRepository) ListRecent(limit int) ([]*history.Entry, error) {
	if limit < 1 {
		return nil, &history.InvalidLimitError{Limit: limit}
	}
	rows, err := r.db.Query(
		`SELECT id, guid, scene_id, started_at, ended_at, elapsed_seconds, end_reason
		 FROM play_sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list play sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*history.Entry
	for rows.Next() {
		var m playSessionModel
		if err := rows.Scan(&m.ID, &m.GUID, &m.SceneID, &m.StartedAt, &m.EndedAt, &m.ElapsedSeconds, &m.EndReason); err != nil {
			return nil, fmt.Errorf("failed to scan play session: %w", err)
		}
		e, err := m.toEntry()
		if err != nil {
			return nil, fmt.Errorf("play session %d has a malformed guid: %w", m.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play sessions: %w", err)
	}
	return entries, nil
}

// TotalsByScene sums sessions and elapsed time per scene.
func (r *playSessionRepository) TotalsByScene() ([]history.SceneTotal, error) {
	rows, err := r.db.Query(
		`SELECT scene_id, COUNT(*), SUM(elapsed_seconds), MAX(started_at)
		 FROM play_sessions
		 GROUP BY scene_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to total play sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []history.SceneTotal
	for rows.Next() {
		var (
			sceneID  string
			sessions int
			seconds  int64
			last     int64
		)
		if err := rows.Scan(&sceneID, &sessions, &seconds, &last); err != nil {
			return nil, fmt.Errorf("failed to scan scene total: %w", err)
		}
		totals = append(totals, history.SceneTotal{
			SceneID:  scene.ID(sceneID),
			Sessions: sessions,
			Elapsed:  time.Duration(seconds) * time.Second,
			LastPlay: time.Unix(last, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scene totals: %w", err)
	}
	history.SortTotals(totals)
	return totals, nil
}

// Clear deletes every play session.
func (r *playSessionRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM play_sessions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear play sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
