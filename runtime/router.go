package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"log/slog"
)

// Router resolves target users to live sinks and pushes one event to each.
//
// Delivery is at-most-once and best-effort: no retry, no queue, no
// guarantee if a connection is mid-teardown. Empty or fully unreachable
// target sets are not errors. Router is not a message broker.
type Router struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewRouter(log *slog.Logger, registry contract.IRegistry) *Router {
	return &Router{log: log, registry: registry}
}

// Emit delivers e to every reachable user in targets.
func (r *Router) Emit(targets []string, e domain.OutboundEvent) {
	for _, sink := range r.registry.Resolve(targets) {
		r.deliver(sink, e)
	}
}

// EmitTo delivers e to a single user. Returns false if the user holds no
// live connection.
func (r *Router) EmitTo(userID string, e domain.OutboundEvent) bool {
	sink, ok := r.registry.HandleForUser(userID)
	if !ok {
		return false
	}
	r.deliver(sink, e)
	return true
}

// Broadcast delivers e to every live connection.
func (r *Router) Broadcast(e domain.OutboundEvent) {
	for _, sink := range r.registry.All() {
		r.deliver(sink, e)
	}
}

func (r *Router) deliver(sink contract.EventSink, e domain.OutboundEvent) {
	if err := sink.Deliver(e); err != nil {
		r.log.Debug("event dropped",
			"event", e.Event,
			"socket_id", sink.ID(),
			"error", err)
	}
}
