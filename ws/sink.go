package ws

import (
	"sync"

	"github.com/google/uuid"

	"chat-relay/domain"
	"chat-relay/errors"
)

// Sink is the connection handle handed to the registry and the router.
// Deliver pushes into a buffered channel consumed by the connection's
// write pump; when the buffer is full the event is dropped rather than
// blocking the fan-out path behind a slow consumer.
type Sink struct {
	id     string
	out    chan domain.OutboundEvent
	closed chan struct{}
	once   sync.Once
	reason string
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		id:     uuid.NewString(),
		out:    make(chan domain.OutboundEvent, bufferSize),
		closed: make(chan struct{}),
	}
}

func (s *Sink) ID() string { return s.id }

func (s *Sink) Deliver(e domain.OutboundEvent) error {
	select {
	case <-s.closed:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.out <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// ForceClose signals the write pump to terminate the connection. Safe to
// call more than once; the first reason wins.
func (s *Sink) ForceClose(reason string) {
	s.once.Do(func() {
		s.reason = reason
		close(s.closed)
	})
}

// Events is consumed by the single writer goroutine of the connection.
func (s *Sink) Events() <-chan domain.OutboundEvent { return s.out }

func (s *Sink) Closed() <-chan struct{} { return s.closed }

// CloseReason is only meaningful once Closed is signalled.
func (s *Sink) CloseReason() string {
	select {
	case <-s.closed:
		return s.reason
	default:
		return ""
	}
}
