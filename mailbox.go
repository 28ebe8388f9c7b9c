package gpan

import (
	"context"
	"sync/atomic"
)

// Mailbox hands events from Serve to the main flow. It holds at most one
// event; a post onto a full mailbox is dropped and counted.
type Mailbox struct {
	ch      chan Event
	dropped atomic.Uint64
}

func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan Event, 1)}
}

// Post stores ev unless the mailbox is full. It never blocks.
func (m *Mailbox) Post(ev Event) bool {
	select {
	case m.ch <- ev:
		return true
	default:
		m.dropped.Add(1)
		return false
	}
}

// Take empties the mailbox without blocking.
func (m *Mailbox) Take() (Event, bool) {
	select {
	case ev := <-m.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// Wait blocks until an event is posted or ctx is done.
func (m *Mailbox) Wait(ctx context.Context) (Event, error) {
	select {
	case ev := <-m.ch:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Dropped returns how many posts found the mailbox full.
func (m *Mailbox) Dropped() uint64 {
	return m.dropped.Load()
}
