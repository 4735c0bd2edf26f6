package event

import (
	"sync/atomic"
	"time"
)

// ///////////////////////////////////////////////
// Stream
// ///////////////////////////////////////////////

// DefaultCapacity is the stream buffer size used when no explicit capacity
// is configured. Termination traffic is a handful of events per process
// lifetime, so a small buffer absorbs every realistic burst.
const DefaultCapacity = 8

// Stream is the fixed-capacity termination event queue shared by all
// translators. The buffer is allocated once at construction; posting never
// blocks and never allocates, so it is safe from console control threads
// and signal handler goroutines.
//
// Events posted before a consumer attaches are buffered up to the
// capacity. On overflow the newest event is dropped and counted rather
// than blocking the posting thread.
type Stream struct {
	// ch carries the events. Its buffer is the stream's only storage.
	ch chan Event
	// seq is the production sequence counter.
	seq atomic.Uint64
	// dropped counts events discarded because the buffer was full.
	dropped atomic.Uint64
}

// NewStream creates a stream with the given buffer capacity.
// A capacity below 1 selects [DefaultCapacity].
func NewStream(capacity int) *Stream {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Stream{ch: make(chan Event, capacity)}
}

// Post translates one notification into an Event and enqueues it.
// It is safe to call from any goroutine or callback thread and never
// blocks. The return value reports whether the event was admitted;
// false means the buffer was full and the event was dropped.
func (s *Stream) Post(kind Kind, source Source) bool {
	ev := Event{
		Kind:   kind,
		Source: source,
		Seq:    s.seq.Add(1),
		Time:   time.Now(),
	}
	select {
	case s.ch <- ev:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Events returns the receive side of the stream for the single consumer.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Drain removes and returns every buffered event without blocking.
// It is used by teardown sequences that must observe pending events
// exactly once before stopping.
func (s *Stream) Drain() []Event {
	var evs []Event
	for {
		select {
		case ev := <-s.ch:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

// Pending returns the number of buffered events.
func (s *Stream) Pending() int {
	return len(s.ch)
}

// Capacity returns the fixed buffer capacity.
func (s *Stream) Capacity() int {
	return cap(s.ch)
}

// Dropped returns the number of events discarded due to a full buffer.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Posted returns the total number of events produced, including dropped
// ones. Seq values of admitted events never exceed this.
func (s *Stream) Posted() uint64 {
	return s.seq.Load()
}
