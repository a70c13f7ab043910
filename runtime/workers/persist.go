package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"log/slog"
)

// PersistWorker drains queued messages into the message store.
//
// This is the explicit half of the "emit now, persist asynchronously"
// contract: the coordinator has already fanned the message out by the time
// it lands here, so a store failure is logged and swallowed — realtime
// delivery is the primary success signal and no client ever hears about a
// write error.
type PersistWorker struct {
	log   *slog.Logger
	store contract.IMessageStore
	jobs  <-chan domain.StoredMessage
}

func NewPersistWorker(log *slog.Logger, store contract.IMessageStore,
	jobs <-chan domain.StoredMessage) *PersistWorker {
	return &PersistWorker{log: log, store: store, jobs: jobs}
}

func (w *PersistWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case m, ok := <-w.jobs:
			if !ok {
				return nil
			}
			w.persist(m)
		}
	}
}

func (w *PersistWorker) persist(m domain.StoredMessage) {
	if err := w.store.StoreMessage(m); err != nil {
		w.log.Error("message persistence failed",
			"chat", m.Chat,
			"message_id", m.ID,
			"error", err)
	}
}

// drain flushes whatever is already queued at shutdown without waiting for
// new work.
func (w *PersistWorker) drain() {
	for {
		select {
		case m, ok := <-w.jobs:
			if !ok {
				return
			}
			w.persist(m)
		default:
			return
		}
	}
}
