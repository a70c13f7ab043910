package runtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

type stubSink struct {
	id     string
	events []domain.OutboundEvent
	full   bool
	closed bool
	reason string
}

func newStubSink() *stubSink {
	return &stubSink{id: uuid.NewString()}
}

func (s *stubSink) ID() string { return s.id }

func (s *stubSink) Deliver(e domain.OutboundEvent) error {
	if s.full {
		return errors.ErrSinkFull
	}
	s.events = append(s.events, e)
	return nil
}

func (s *stubSink) ForceClose(reason string) {
	s.closed = true
	s.reason = reason
}

func TestRegistry_Register_And_Resolve(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sinkAlice := newStubSink()
	sinkBob := newStubSink()

	// Given no user is connected
	req.Empty(registry.Sessions)

	// When two users register
	registry.Register("alice", sinkAlice)
	registry.Register("bob", sinkBob)

	// Then both hold exactly one live handle
	req.Len(registry.Sessions, 2)
	current, ok := registry.HandleForUser("alice")
	req.True(ok)
	req.Equal(sinkAlice.ID(), current.ID())
}

func TestRegistry_Resolve_Skips_Offline_Members(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sinkAlice := newStubSink()

	// Given only alice is connected
	registry.Register("alice", sinkAlice)

	// When resolving a membership list with offline users
	sinks := registry.Resolve([]string{"alice", "bob", "clara"})

	// Then only the reachable subset comes back, without error
	req.Len(sinks, 1)
	req.Equal(sinkAlice.ID(), sinks[0].ID())
}

func TestRegistry_Register_Evicts_Previous_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	oldSink := newStubSink()
	newSink := newStubSink()

	// Given alice already holds a live connection
	registry.Register("alice", oldSink)

	// When a second connection registers for the same user
	registry.Register("alice", newSink)

	// Then the old handle is force-closed and the new one wins
	req.True(oldSink.closed)
	req.False(newSink.closed)
	current, ok := registry.HandleForUser("alice")
	req.True(ok)
	req.Equal(newSink.ID(), current.ID())
}

func TestRegistry_Register_Same_Sink_Twice_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newStubSink()

	// When the same connection registers twice (user:join after handshake)
	registry.Register("alice", sink)
	registry.Register("alice", sink)

	// Then the handle is not closed
	req.False(sink.closed)
	req.Len(registry.Sessions, 1)
}

func TestRegistry_Unregister_Ignores_Evicted_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	oldSink := newStubSink()
	newSink := newStubSink()

	// Given alice reconnected, evicting the first connection
	registry.Register("alice", oldSink)
	registry.Register("alice", newSink)

	// When the evicted connection's teardown runs late
	registry.Unregister("alice", oldSink)

	// Then the successor's entry survives
	current, ok := registry.HandleForUser("alice")
	req.True(ok)
	req.Equal(newSink.ID(), current.ID())

	// And unregistering the current handle removes it
	registry.Unregister("alice", newSink)
	_, ok = registry.HandleForUser("alice")
	req.False(ok)
}

func TestRegistry_All_Returns_Every_Live_Sink(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Register("alice", newStubSink())
	registry.Register("bob", newStubSink())
	registry.Register("clara", newStubSink())

	req.Len(registry.All(), 3)
}
