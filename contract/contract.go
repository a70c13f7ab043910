//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself; the supervisor recovers panics and
// restarts it.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the opaque handle to one live client connection.
// Deliver must never block on a slow consumer; implementations buffer and
// drop instead. ForceClose signals the transport to terminate the
// connection, used when a newer session evicts an older one.
type EventSink interface {
	ID() string
	Deliver(e domain.OutboundEvent) error
	ForceClose(reason string)
}

// IRegistry is the source of truth for "is this user currently reachable".
// One live sink per user id; registering a second sink for the same id
// force-closes the previous one.
type IRegistry interface {
	Register(userID string, sink EventSink)
	Unregister(userID string, sink EventSink)
	Resolve(userIDs []string) []EventSink
	HandleForUser(userID string) (EventSink, bool)
	All() []EventSink
}

// IPresence tracks which users are viewing a chat right now. Distinct from
// connected: a user can hold a live connection without being "online" for
// presence purposes.
type IPresence interface {
	MarkJoined(userID string)
	MarkLeft(userID string)
	MarkDisconnected(userID string)
	Snapshot() []string
}

// IRouter fans one event out to the currently reachable subset of the
// target users. At-most-once, best-effort, silent on unreachable targets.
type IRouter interface {
	Emit(targets []string, e domain.OutboundEvent)
	EmitTo(userID string, e domain.OutboundEvent) bool
	Broadcast(e domain.OutboundEvent)
}

// IMessageStore is the external persistence collaborator. Writes happen
// after the realtime fan-out and their failure is never surfaced to clients.
type IMessageStore interface {
	StoreMessage(m domain.StoredMessage) error
}

// IIdentity validates a connection credential at connect time and yields
// the durable user behind it.
type IIdentity interface {
	Authenticate(rawCredential string) (domain.User, error)
}
