// Package services holds the two event coordinators of the realtime core:
// chat messaging and call signaling. Each inbound event is validated,
// mutates the shared runtime state, and triggers a fan-out of derived
// events to other live connections.
package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

type newMessagePayload struct {
	ChatID  string                 `json:"chatId"`
	Message domain.RealtimeMessage `json:"message"`
}

type chatRef struct {
	ChatID string `json:"chatId"`
}

// MessagingService coordinates chat events. It holds no per-event state:
// each event is independent and the chat membership list is trusted as
// supplied by the caller (sourced from a prior REST lookup).
type MessagingService struct {
	log          *slog.Logger
	registry     contract.IRegistry
	presence     contract.IPresence
	router       contract.IRouter
	persistQueue chan domain.StoredMessage
}

func NewMessagingService(log *slog.Logger, registry contract.IRegistry,
	presence contract.IPresence, router contract.IRouter, queueSize int) *MessagingService {
	return &MessagingService{
		log:          log,
		registry:     registry,
		presence:     presence,
		router:       router,
		persistQueue: make(chan domain.StoredMessage, queueSize),
	}
}

// PersistQueue exposes the pending durable writes, consumed by the
// persistence worker.
func (s *MessagingService) PersistQueue() <-chan domain.StoredMessage {
	return s.persistQueue
}

// PostMessage fans the message out to the reachable members (sender
// excluded) and then queues the durable write. Fan-out happens first: the
// realtime delivery is the primary success signal, persistence is
// fire-and-forget and its failure is only ever logged.
func (s *MessagingService) PostMessage(sender domain.User, ev event.NewMessage) {
	now := time.Now().UTC()
	realtime := domain.RealtimeMessage{
		Content:   ev.Message,
		Sender:    domain.Sender{ID: sender.ID, Name: sender.Name},
		Chat:      ev.ChatID,
		CreatedAt: now.Format(time.RFC3339Nano),
	}

	targets := othersThan(ev.Members, sender.ID)
	s.router.Emit(targets, domain.OutboundEvent{
		Event: event.NewMessageName,
		Data:  newMessagePayload{ChatID: ev.ChatID, Message: realtime},
	})
	s.router.Emit(targets, domain.OutboundEvent{
		Event: event.NewMessageAlertName,
		Data:  chatRef{ChatID: ev.ChatID},
	})

	stored := domain.StoredMessage{
		ID:       uuid.New(),
		Chat:     ev.ChatID,
		SenderID: sender.ID,
		Content:  ev.Message,
		At:       now,
	}
	select {
	case s.persistQueue <- stored:
	default:
		s.log.Warn("persist queue full, dropping message",
			"chat", ev.ChatID, "sender", sender.ID)
	}
}

// Typing relays a start/stop typing notification verbatim to the other
// members. The server keeps no typing state; expiry is a client concern.
func (s *MessagingService) Typing(sender domain.User, name, chatID string, members []string) {
	s.router.Emit(othersThan(members, sender.ID), domain.OutboundEvent{
		Event: name,
		Data:  chatRef{ChatID: chatID},
	})
}

// ChatJoined marks the user online and broadcasts the resulting snapshot to
// the chat's members. Whole snapshot, not a diff: acceptable at this scale.
// The claimed id must match the authenticated identity: presence is only
// ever mutated for the user behind the live connection.
func (s *MessagingService) ChatJoined(user domain.User, ev event.ChatJoined) error {
	if ev.UserID != user.ID {
		return errors.ErrUnauthorized
	}
	s.presence.MarkJoined(user.ID)
	s.router.Emit(ev.Members, s.onlineUsers())
	return nil
}

// ChatLeaved is idempotent: leaving twice leaves the presence set unchanged
// after the first removal. Same identity rule as ChatJoined.
func (s *MessagingService) ChatLeaved(user domain.User, ev event.ChatLeaved) error {
	if ev.UserID != user.ID {
		return errors.ErrUnauthorized
	}
	s.presence.MarkLeft(user.ID)
	s.router.Emit(ev.Members, s.onlineUsers())
	return nil
}

// Disconnected clears presence, removes the registry mapping and broadcasts
// the new online set to every remaining connection.
func (s *MessagingService) Disconnected(user domain.User, sink contract.EventSink) {
	s.presence.MarkDisconnected(user.ID)
	s.registry.Unregister(user.ID, sink)
	s.router.Broadcast(s.onlineUsers())
}

func (s *MessagingService) onlineUsers() domain.OutboundEvent {
	return domain.OutboundEvent{Event: event.OnlineUsersName, Data: s.presence.Snapshot()}
}

func othersThan(members []string, userID string) []string {
	return lo.Filter(members, func(id string, _ int) bool { return id != userID })
}
