package player

import "sync"

// Mailbox is a Dispatcher backed by a channel. The host loop receives from
// Events; Dispatch blocks until the event is taken or the mailbox is closed.
type Mailbox struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewMailbox creates a mailbox buffering up to size events.
func NewMailbox(size int) *Mailbox {
	return &Mailbox{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Dispatch implements Dispatcher. Events sent after Close are dropped.
func (m *Mailbox) Dispatch(ev Event) {
	select {
	case <-m.done:
		return
	default:
	}
	select {
	case m.ch <- ev:
	case <-m.done:
	}
}

// Events is never closed; select on Done as well.
func (m *Mailbox) Events() <-chan Event { return m.ch }

// Done is closed by Close.
func (m *Mailbox) Done() <-chan struct{} { return m.done }

// Close releases blocked senders. Safe to call more than once.
func (m *Mailbox) Close() {
	m.once.Do(func() { close(m.done) })
}
