package playertest

import (
	"sync"

	"github.com/zjrosen/dread/internal/player"
)

// Queue collects dispatched events until the test drains them into a player,
// the same way a host loop would.
type Queue struct {
	mu     sync.Mutex
	events []player.Event
}

// Dispatch implements player.Dispatcher.
func (q *Queue) Dispatch(ev player.Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain hands every queued event to p, including events queued while draining.
func (q *Queue) Drain(p *player.Player) int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.events) == 0 {
			q.mu.Unlock()
			return n
		}
		ev := q.events[0]
		q.events = q.events[1:]
		q.mu.Unlock()

		p.Handle(ev)
		n++
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
