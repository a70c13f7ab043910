package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sender is the subset of user identity embedded in realtime payloads.
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RealtimeMessage is the payload fanned out to connected chat members.
// Field names are part of the wire contract.
type RealtimeMessage struct {
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	Chat      string `json:"chat"`
	CreatedAt string `json:"createdAt"`
}

// StoredMessage is the durable side effect of a NEW_MESSAGE event,
// persisted after the realtime fan-out already happened.
type StoredMessage struct {
	ID       uuid.UUID
	Chat     string
	SenderID string
	Content  string
	At       time.Time
}
