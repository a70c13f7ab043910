// Package runtime owns the long-lived shared mutable state of the realtime
// core: the connection registry, the presence set and the call session
// table. Each structure serializes its writes behind its own mutex and is
// constructed once at process start.
package runtime

import (
	"chat-relay/contract"
	"sync"
)

// Registry maps durable user ids to their single live connection sink.
type Registry struct {
	mu       sync.RWMutex
	Sessions map[string]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{Sessions: make(map[string]contract.EventSink)}
}

// Register stores the sink as the one live handle for userID. A previous
// handle for the same user is force-closed first, so a user can never hold
// two live sessions. Re-registering the same sink is a no-op.
func (r *Registry) Register(userID string, sink contract.EventSink) {
	r.mu.Lock()
	old, exists := r.Sessions[userID]
	r.Sessions[userID] = sink
	r.mu.Unlock()

	if exists && old.ID() != sink.ID() {
		old.ForceClose("session replaced by a newer connection")
	}
}

// Unregister removes the mapping, but only if it still points at sink.
// The teardown of an evicted connection runs after its successor has
// registered and must not remove the successor's entry.
func (r *Registry) Unregister(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.Sessions[userID]; ok && current.ID() == sink.ID() {
		delete(r.Sessions, userID)
	}
}

// Resolve returns the sinks of the reachable subset of userIDs. Unknown or
// offline users are silently omitted: chat membership lists always contain
// offline members and that is not an error.
func (r *Registry) Resolve(userIDs []string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, id := range userIDs {
		if sink, ok := r.Sessions[id]; ok {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

func (r *Registry) HandleForUser(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.Sessions[userID]
	return sink, ok
}

// All returns every live sink, used for process-wide broadcasts.
func (r *Registry) All() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.Sessions))
	for _, sink := range r.Sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}
