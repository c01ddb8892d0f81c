package core

import "sync"

// Stream is a single-value observable: it always holds the latest
// published state, and fans every publication out to subscribers.
// Publication is last-write-wins: a slow subscriber sees its buffer
// conflated to the newest values, it never blocks the publisher.
type Stream[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[chan T]struct{}
}

func NewStream[T any](initial T) *Stream[T] {
	return &Stream[T]{
		cur:  initial,
		subs: make(map[chan T]struct{}),
	}
}

// Current returns the latest published value.
func (s *Stream[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Publish replaces the current value and notifies all subscribers.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = v
	for ch := range s.subs {
		select {
		case ch <- v:
		default:
			// full buffer: drop the oldest queued value, then retry
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Subscribe registers a new observer. The channel immediately carries
// the current value. The returned cancel func must be called to
// release the subscription.
func (s *Stream[T]) Subscribe(buf int) (<-chan T, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan T, buf)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	ch <- s.cur
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// SubscriberCount reports how many observers are registered.
func (s *Stream[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
