// Package event defines the closed set of inbound wire events.
//
// Each client message is decoded into exactly one of these variants with a
// fixed, validated payload shape. Unknown names or malformed payloads are
// rejected at the transport boundary instead of leaking into handlers.
package event

import "encoding/json"

// Wire event names, inbound and outbound. The spelling is part of the
// protocol and must not change.
const (
	UserJoinName   = "user:join"
	UserJoinedName = "user:joined"
	UserStatusName = "user:status"

	CallInitiateName  = "call:initiate"
	CallInitiatedName = "call:initiated"
	CallIncomingName  = "call:incoming"
	CallAcceptName    = "call:accept"
	CallAcceptedName  = "call:accepted"
	CallRejectName    = "call:reject"
	CallRejectedName  = "call:rejected"
	CallOfferName     = "call:offer"
	CallAnswerName    = "call:answer"
	IceCandidateName  = "ice:candidate"
	CallEndName       = "call:end"
	CallEndedName     = "call:ended"

	NewMessageName      = "NEW_MESSAGE"
	NewMessageAlertName = "NEW_MESSAGE_ALERT"
	StartTypingName     = "START_TYPING"
	StopTypingName      = "STOP_TYPING"
	ChatJoinedName      = "CHAT_JOINED"
	ChatLeavedName      = "CHAT_LEAVED"
	OnlineUsersName     = "ONLINE_USERS"

	ErrorName = "error"
)

// Inbound is the tagged union of events a client may send.
type Inbound interface {
	EventName() string
}

type UserJoin struct {
	UserID string `json:"userId"`
}

func (UserJoin) EventName() string { return UserJoinName }

type CallInitiate struct {
	To       string `json:"to" validate:"required"`
	CallType string `json:"callType" validate:"required,oneof=audio video"`
}

func (CallInitiate) EventName() string { return CallInitiateName }

type CallAccept struct {
	CallID string `json:"callId" validate:"required"`
	From   string `json:"from" validate:"required"`
}

func (CallAccept) EventName() string { return CallAcceptName }

type CallReject struct {
	CallID string `json:"callId" validate:"required"`
	From   string `json:"from" validate:"required"`
}

func (CallReject) EventName() string { return CallRejectName }

// CallOffer relays an opaque session description. Its internal structure is
// owned by the client media stack and never inspected here.
type CallOffer struct {
	Offer    json.RawMessage `json:"offer" validate:"required"`
	From     string          `json:"from" validate:"required"`
	To       string          `json:"to" validate:"required"`
	CallType string          `json:"callType"`
}

func (CallOffer) EventName() string { return CallOfferName }

type CallAnswer struct {
	Answer json.RawMessage `json:"answer" validate:"required"`
	From   string          `json:"from" validate:"required"`
	To     string          `json:"to" validate:"required"`
}

func (CallAnswer) EventName() string { return CallAnswerName }

type IceCandidate struct {
	Candidate json.RawMessage `json:"candidate" validate:"required"`
	From      string          `json:"from" validate:"required"`
	To        string          `json:"to" validate:"required"`
}

func (IceCandidate) EventName() string { return IceCandidateName }

type CallEnd struct {
	CallID string `json:"callId" validate:"required"`
}

func (CallEnd) EventName() string { return CallEndName }

type UserStatus struct {
	UserID string `json:"userId" validate:"required"`
}

func (UserStatus) EventName() string { return UserStatusName }

type NewMessage struct {
	ChatID  string   `json:"chatId" validate:"required"`
	Members []string `json:"members" validate:"required"`
	Message string   `json:"message" validate:"required"`
}

func (NewMessage) EventName() string { return NewMessageName }

type StartTyping struct {
	ChatID  string   `json:"chatId" validate:"required"`
	Members []string `json:"members" validate:"required"`
}

func (StartTyping) EventName() string { return StartTypingName }

type StopTyping struct {
	ChatID  string   `json:"chatId" validate:"required"`
	Members []string `json:"members" validate:"required"`
}

func (StopTyping) EventName() string { return StopTypingName }

type ChatJoined struct {
	UserID  string   `json:"userId" validate:"required"`
	Members []string `json:"members" validate:"required"`
}

func (ChatJoined) EventName() string { return ChatJoinedName }

type ChatLeaved struct {
	UserID  string   `json:"userId" validate:"required"`
	Members []string `json:"members" validate:"required"`
}

func (ChatLeaved) EventName() string { return ChatLeavedName }
