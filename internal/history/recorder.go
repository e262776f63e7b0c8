package history

import (
	"sync"

	"github.com/zjrosen/dread/internal/log"
	"github.com/zjrosen/dread/internal/player"
)

// Recorder saves player session records in the background. Failures are
// logged and never reach the player.
type Recorder struct {
	repo Repository

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

var _ player.Recorder = (*Recorder)(nil)

// NewRecorder creates a Recorder backed by repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record implements player.Recorder.
func (r *Recorder) Record(rec player.SessionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		log.Debug(log.CatDB, "Dropping session record after close", "session", rec.SessionID.String())
		return
	}

	entry := FromRecord(rec)
	r.wg.Add(1)
	log.SafeGo("history.save", func() {
		defer r.wg.Done()
		if err := r.repo.Save(entry); err != nil {
			log.ErrorErr(log.CatDB, "Failed to save play session", err,
				"session", entry.SessionID.String(), "scene", string(entry.SceneID))
			return
		}
		log.Debug(log.CatDB, "Saved play session", "id", entry.ID, "scene", string(entry.SceneID),
			"reason", string(entry.Reason), "elapsed", entry.Elapsed.String())
	})
}

// Close waits for pending saves. Records arriving afterwards are dropped.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
