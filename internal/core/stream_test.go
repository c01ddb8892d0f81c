package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_CurrentStartsAtInitial(t *testing.T) {
	s := NewStream("a")
	assert.Equal(t, "a", s.Current())
}

func TestStream_PublishUpdatesCurrent(t *testing.T) {
	s := NewStream("a")
	s.Publish("b")
	assert.Equal(t, "b", s.Current())
}

func TestStream_SubscribeSeesCurrentImmediately(t *testing.T) {
	s := NewStream("a")
	ch, cancel := s.Subscribe(4)
	defer cancel()

	select {
	case v := <-ch:
		assert.Equal(t, "a", v)
	case <-time.After(time.Second):
		t.Fatal("no initial value")
	}
}

func TestStream_FanOut(t *testing.T) {
	s := NewStream(0)
	ch1, cancel1 := s.Subscribe(4)
	defer cancel1()
	ch2, cancel2 := s.Subscribe(4)
	defer cancel2()

	<-ch1
	<-ch2
	s.Publish(7)

	assert.Equal(t, 7, <-ch1)
	assert.Equal(t, 7, <-ch2)
}

func TestStream_LastWriteWinsConflation(t *testing.T) {
	s := NewStream(0)
	ch, cancel := s.Subscribe(1)
	defer cancel()

	// initial value fills the 1-slot buffer; further publishes must
	// conflate rather than block
	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	assert.Equal(t, 3, <-ch)
	assert.Equal(t, 3, s.Current())
}

func TestStream_CancelStopsDelivery(t *testing.T) {
	s := NewStream(0)
	ch, cancel := s.Subscribe(4)
	<-ch
	require.Equal(t, 1, s.SubscriberCount())

	cancel()
	cancel() // second cancel is a no-op
	assert.Equal(t, 0, s.SubscriberCount())

	s.Publish(1)
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected delivery after cancel: %v", v)
		}
	default:
	}
}
