package services

import (
	"encoding/json"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/runtime"
)

const disconnectedReason = "User disconnected"

type joinedPayload struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
}

type callIncomingPayload struct {
	From     string `json:"from"`
	CallType string `json:"callType"`
	CallID   string `json:"callId"`
}

type callInitiatedPayload struct {
	CallID string `json:"callId"`
	To     string `json:"to"`
}

type callByPayload struct {
	CallID string `json:"callId"`
	By     string `json:"by"`
}

type callEndedPayload struct {
	CallID string `json:"callId"`
	By     string `json:"by"`
	Reason string `json:"reason,omitempty"`
}

type offerPayload struct {
	Offer    json.RawMessage `json:"offer"`
	From     string          `json:"from"`
	CallType string          `json:"callType"`
}

type answerPayload struct {
	Answer json.RawMessage `json:"answer"`
	From   string          `json:"from"`
}

type icePayload struct {
	Candidate json.RawMessage `json:"candidate"`
	From      string          `json:"from"`
}

type statusPayload struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
	IsInCall bool   `json:"isInCall"`
}

// SignalingService brokers two-party call negotiation: initiation,
// accept/reject, opaque SDP and ICE relay, and termination. It never
// touches media. Returned errors carry the exact wire message and are
// emitted back to the originating connection only.
type SignalingService struct {
	log      *slog.Logger
	registry contract.IRegistry
	calls    *runtime.CallTable
	router   contract.IRouter
}

func NewSignalingService(log *slog.Logger, registry contract.IRegistry,
	calls *runtime.CallTable, router contract.IRouter) *SignalingService {
	return &SignalingService{log: log, registry: registry, calls: calls, router: router}
}

// Join confirms the connection's registry entry and acknowledges with the
// socket id. The claimed user id must match the authenticated identity; a
// stale session for the same user was already evicted at register time.
func (s *SignalingService) Join(user domain.User, sink contract.EventSink, ev event.UserJoin) error {
	if ev.UserID == "" {
		return errors.ErrUserIDRequired
	}
	if ev.UserID != user.ID {
		return errors.ErrUnauthorized
	}
	s.registry.Register(user.ID, sink)
	s.router.EmitTo(user.ID, domain.OutboundEvent{
		Event: event.UserJoinedName,
		Data:  joinedPayload{UserID: user.ID, SocketID: sink.ID()},
	})
	s.log.Info("user joined", "user_id", user.ID, "socket_id", sink.ID())
	return nil
}

// Initiate starts ringing the callee. The caller's own busy state is
// checked first, then the callee must hold a live connection and be free.
func (s *SignalingService) Initiate(caller domain.User, ev event.CallInitiate) error {
	if s.calls.InCall(caller.ID) {
		return errors.ErrAlreadyInCall
	}
	if _, online := s.registry.HandleForUser(ev.To); !online {
		return errors.ErrUserNotFound
	}
	session, err := s.calls.Initiate(caller.ID, ev.To)
	if err != nil {
		return err
	}

	s.router.EmitTo(ev.To, domain.OutboundEvent{
		Event: event.CallIncomingName,
		Data:  callIncomingPayload{From: caller.ID, CallType: ev.CallType, CallID: session.ID},
	})
	s.router.EmitTo(caller.ID, domain.OutboundEvent{
		Event: event.CallInitiatedName,
		Data:  callInitiatedPayload{CallID: session.ID, To: ev.To},
	})
	s.log.Info("call initiated",
		"call_id", session.ID, "caller", caller.ID, "callee", ev.To, "call_type", ev.CallType)
	return nil
}

// Accept confirms a ringing call. Both participants receive the
// confirmation; no SDP is exchanged at this step.
func (s *SignalingService) Accept(callee domain.User, ev event.CallAccept) error {
	session, err := s.calls.Accept(ev.CallID)
	if err != nil {
		return err
	}

	accepted := domain.OutboundEvent{
		Event: event.CallAcceptedName,
		Data:  callByPayload{CallID: session.ID, By: callee.ID},
	}
	s.router.EmitTo(ev.From, accepted)
	s.router.EmitTo(callee.ID, accepted)
	return nil
}

// Reject declines a ringing call and destroys the session. Rejecting an
// already-gone call still notifies and is not an error.
func (s *SignalingService) Reject(callee domain.User, ev event.CallReject) error {
	rejected := domain.OutboundEvent{
		Event: event.CallRejectedName,
		Data:  callByPayload{CallID: ev.CallID, By: callee.ID},
	}
	s.router.EmitTo(ev.From, rejected)
	s.calls.End(ev.CallID)
	s.router.EmitTo(callee.ID, rejected)
	return nil
}

// Offer relays an opaque session description to the named recipient after
// checking the sender is who they claim to be.
func (s *SignalingService) Offer(sender domain.User, ev event.CallOffer) error {
	if ev.From != sender.ID {
		return errors.ErrUnauthorized
	}
	delivered := s.router.EmitTo(ev.To, domain.OutboundEvent{
		Event: event.CallOfferName,
		Data:  offerPayload{Offer: ev.Offer, From: sender.ID, CallType: ev.CallType},
	})
	if !delivered {
		return errors.ErrPeerNotFound
	}
	return nil
}

func (s *SignalingService) Answer(sender domain.User, ev event.CallAnswer) error {
	if ev.From != sender.ID {
		return errors.ErrUnauthorized
	}
	delivered := s.router.EmitTo(ev.To, domain.OutboundEvent{
		Event: event.CallAnswerName,
		Data:  answerPayload{Answer: ev.Answer, From: sender.ID},
	})
	if !delivered {
		return errors.ErrPeerNotFound
	}
	return nil
}

// Ice relays a connectivity candidate, same anti-spoof rule as Offer.
func (s *SignalingService) Ice(sender domain.User, ev event.IceCandidate) error {
	if ev.From != sender.ID {
		return errors.ErrUnauthorized
	}
	delivered := s.router.EmitTo(ev.To, domain.OutboundEvent{
		Event: event.IceCandidateName,
		Data:  icePayload{Candidate: ev.Candidate, From: sender.ID},
	})
	if !delivered {
		return errors.ErrPeerNotFound
	}
	return nil
}

// End terminates the call and notifies the other participant.
func (s *SignalingService) End(user domain.User, ev event.CallEnd) error {
	session, ok := s.calls.End(ev.CallID)
	if !ok {
		return errors.ErrCallNotFound
	}
	s.notifyEnded(session, user.ID, "")
	s.log.Info("call ended", "call_id", session.ID, "by", user.ID)
	return nil
}

// Status reports connectivity and in-call state for any user id. Unknown
// users are reported offline rather than erroring.
func (s *SignalingService) Status(requester domain.User, ev event.UserStatus) {
	_, online := s.registry.HandleForUser(ev.UserID)
	s.router.EmitTo(requester.ID, domain.OutboundEvent{
		Event: event.UserStatusName,
		Data: statusPayload{
			UserID:   ev.UserID,
			IsOnline: online,
			IsInCall: s.calls.InCall(ev.UserID),
		},
	})
}

// Disconnected treats a dropped connection as an implicit end of whatever
// call the user was in. It runs before registry/presence cleanup so no
// session is ever left referencing a disconnected participant.
func (s *SignalingService) Disconnected(user domain.User) {
	callID, ok := s.calls.CallFor(user.ID)
	if !ok {
		return
	}
	if session, ended := s.calls.End(callID); ended {
		s.notifyEnded(session, user.ID, disconnectedReason)
		s.log.Info("call ended by disconnect", "call_id", session.ID, "by", user.ID)
	}
}

func (s *SignalingService) notifyEnded(session domain.CallSession, by, reason string) {
	other, ok := session.Other(by)
	if !ok {
		return
	}
	s.router.EmitTo(other, domain.OutboundEvent{
		Event: event.CallEndedName,
		Data:  callEndedPayload{CallID: session.ID, By: by, Reason: reason},
	})
}
